package discovery

import (
	"context"
	"fmt"
	"sort"

	"github.com/WADELABS/negative-space/internal/types"
)

// DependencyWalk traverses the declared dependency graph transitively: any
// dependency required (directly or through a chain) by a target-state key
// but absent from the current state is a DEPENDENCY gap. The walk iterates
// to a fixed point, so cycles in the declarations terminate naturally.
type DependencyWalk struct{}

// Name implements Strategy.
func (s *DependencyWalk) Name() string { return StrategyDependencyWalk }

// Philosophy implements Strategy.
func (s *DependencyWalk) Philosophy() string {
	return "Every declared requirement chain ends somewhere the current state isn't"
}

// Discover implements Strategy.
func (s *DependencyWalk) Discover(ctx context.Context, in Input) (*Result, error) {
	result := &Result{}
	deps := in.Context.Dependencies
	if len(deps) == 0 {
		return result, nil
	}

	bKeys := make(map[string]bool, len(in.PointB))
	for k := range in.PointB {
		bKeys[k] = true
	}

	// needed is the transitive closure of dependency names reachable from
	// the target state's keys. A dependency with an empty required-by is
	// treated as globally required.
	needed := NeededDependencies(in.PointB, in.Context)

	// Dependencies whose required-by references nothing we know about
	// cannot be evaluated; record and skip.
	for _, name := range in.Context.DependencyNames() {
		requiredBy := deps[name]
		if requiredBy == "" || bKeys[requiredBy] || needed[requiredBy] {
			continue
		}
		if _, isDep := deps[requiredBy]; isDep {
			continue
		}
		result.Skipped++
		result.Candidates = append(result.Candidates,
			failureCandidate(s.Name(), name, fmt.Sprintf("required-by target %q is not a target key or declared dependency", requiredBy)))
	}

	missing := make(map[string]bool)
	names := make([]string, 0, len(needed))
	for name := range needed {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		result.Examined++
		if _, inA := in.PointA[name]; inA {
			continue
		}
		missing[name] = true
	}

	for _, name := range names {
		if !missing[name] {
			continue
		}
		requiredBy := deps[name]
		cand := types.CandidateGap{
			ID:           idDep + name,
			Type:         types.GapDependency,
			Certainty:    0.9,
			Description:  fmt.Sprintf("dependency %q required by %q is not present in current state", name, requiredBy),
			Keys:         []string{name},
			DiscoveredBy: s.Name(),
		}
		// A chained requirement must be addressed before the thing that
		// needs it: this gap depends on the gaps for whatever it requires.
		for _, dep := range names {
			if missing[dep] && deps[dep] == name {
				cand.Dependencies = append(cand.Dependencies, idDep+dep)
			}
		}
		result.Candidates = append(result.Candidates, cand)

		// When the requiring target key is itself absent from the current
		// state, link the contrastive gap for that key to this dependency
		// so the merge step unions the edge in.
		if requiredBy != "" && bKeys[requiredBy] {
			if _, inA := in.PointA[requiredBy]; !inA {
				gapType, constraintRef := inferMissingType(requiredBy, in.Context)
				result.Candidates = append(result.Candidates, types.CandidateGap{
					ID:            idMissing + requiredBy,
					Type:          gapType,
					Certainty:     0.9,
					Description:   fmt.Sprintf("attribute %q required by target state is absent from current state", requiredBy),
					Keys:          []string{requiredBy},
					Dependencies:  []string{idDep + name},
					DiscoveredBy:  s.Name(),
					ConstraintRef: constraintRef,
				})
			}
		}
	}

	return result, ctx.Err()
}

// NeededDependencies computes the fixed point of dependency names required
// by the target state, directly or transitively. Exported for reuse by the
// counterfactual strategy and the topology surface estimate.
func NeededDependencies(pointB types.State, cctx types.Context) map[string]bool {
	deps := cctx.Dependencies
	bKeys := make(map[string]bool, len(pointB))
	for k := range pointB {
		bKeys[k] = true
	}

	needed := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for name, requiredBy := range deps {
			if needed[name] {
				continue
			}
			if requiredBy == "" || bKeys[requiredBy] || needed[requiredBy] {
				needed[name] = true
				changed = true
			}
		}
	}
	return needed
}
