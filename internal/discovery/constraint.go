package discovery

import (
	"context"
	"fmt"

	"github.com/WADELABS/negative-space/internal/types"
)

// ConstraintPropagation evaluates every declared constraint against both
// states. A constraint satisfied in neither state, or satisfiable in the
// current state but violated by the target's requirements, is a
// CONSTRAINT gap.
type ConstraintPropagation struct{}

// Name implements Strategy.
func (s *ConstraintPropagation) Name() string { return StrategyConstraint }

// Philosophy implements Strategy.
func (s *ConstraintPropagation) Philosophy() string {
	return "A constraint nobody satisfies is a wall nobody has mapped"
}

// Discover implements Strategy.
func (s *ConstraintPropagation) Discover(ctx context.Context, in Input) (*Result, error) {
	result := &Result{}

	for _, name := range in.Context.ConstraintNames() {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		c := in.Context.Constraints[name]
		result.Examined++

		inA := satisfies(in.PointA, c)
		inB := satisfies(in.PointB, c)

		key := c.Requires
		if key == "" {
			key = c.Name
		}

		switch {
		case !inA && !inB:
			cand := types.CandidateGap{
				ID:            idConstr + name,
				Type:          types.GapConstraint,
				Certainty:     0.85,
				Description:   fmt.Sprintf("constraint %q (%s) is satisfied in neither current nor target state", name, c.Description),
				Keys:          []string{key},
				DiscoveredBy:  s.Name(),
				ConstraintRef: name,
			}
			// An immutable constraint whose required key exists nowhere
			// blocks every path to the target state.
			if c.Immutable && c.Requires != "" {
				cand.BlocksAll = true
				cand.Certainty = 0.95
			}
			result.Candidates = append(result.Candidates, cand)

		case !inA && inB:
			cand := types.CandidateGap{
				ID:            idConstr + name,
				Type:          types.GapConstraint,
				Certainty:     0.9,
				Description:   fmt.Sprintf("constraint %q (%s) requires %q, which is absent from current state", name, c.Description, key),
				Keys:          []string{key},
				DiscoveredBy:  s.Name(),
				ConstraintRef: name,
			}
			if c.Immutable && c.Requires != "" {
				cand.BlocksAll = true
				cand.Certainty = 0.95
			}
			result.Candidates = append(result.Candidates, cand)

		case inA && !inB:
			result.Candidates = append(result.Candidates, types.CandidateGap{
				ID:            idConstr + name,
				Type:          types.GapConstraint,
				Certainty:     0.8,
				Description:   fmt.Sprintf("constraint %q (%s) is satisfiable in current state but violated by target requirements", name, c.Description),
				Keys:          []string{key},
				DiscoveredBy:  s.Name(),
				ConstraintRef: name,
			})
		}
	}

	return result, nil
}

// satisfies reports whether a state meets a constraint: the required key
// is present when one is declared, otherwise the constraint's own name
// appears as a key.
func satisfies(s types.State, c types.Constraint) bool {
	if c.Requires != "" {
		_, ok := s[c.Requires]
		return ok
	}
	_, ok := s[c.Name]
	return ok
}
