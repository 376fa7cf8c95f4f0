package discovery

import (
	"context"
	"fmt"

	"github.com/WADELABS/negative-space/internal/types"
)

// CounterfactualExploration asks, for each target-state key: if this key
// were absent from the target, which other gaps would disappear? Keys
// whose removal eliminates dependent gaps are causal roots of the void.
type CounterfactualExploration struct{}

// Name implements Strategy.
func (s *CounterfactualExploration) Name() string { return StrategyCounterfactual }

// Philosophy implements Strategy.
func (s *CounterfactualExploration) Philosophy() string {
	return "Remove a requirement and watch which gaps vanish; what remains standing was never about it"
}

// Discover implements Strategy.
func (s *CounterfactualExploration) Discover(ctx context.Context, in Input) (*Result, error) {
	result := &Result{}

	baseline := missingSurface(in.PointA, in.PointB, in.Context)

	for _, key := range in.PointB.Keys() {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Examined++

		reduced := in.PointB.Clone()
		delete(reduced, key)
		counterfactual := missingSurface(in.PointA, reduced, in.Context)

		// Gaps present in the baseline but gone in the counterfactual,
		// excluding the key's own gap.
		var eliminated []string
		for id := range baseline {
			if id == idMissing+key || id == idValue+key {
				continue
			}
			if !counterfactual[id] {
				eliminated = append(eliminated, id)
			}
		}
		if len(eliminated) == 0 {
			continue
		}

		causalID := idCausal + key
		result.Candidates = append(result.Candidates, types.CandidateGap{
			ID:           causalID,
			Type:         types.GapCausal,
			Certainty:    0.7,
			Description:  fmt.Sprintf("target attribute %q is a causal root: removing it would eliminate %d dependent gap(s)", key, len(eliminated)),
			Keys:         []string{key},
			DiscoveredBy: s.Name(),
		})
	}

	return result, nil
}

// missingSurface computes the ids of the structural gaps a plain diff plus
// dependency walk would surface, keyed for set comparison. It is a cheap
// re-derivation rather than a call into the other strategies, keeping
// strategies independent.
func missingSurface(a, b types.State, cctx types.Context) map[string]bool {
	out := make(map[string]bool)

	for k, bval := range b {
		aval, inA := a[k]
		if !inA {
			out[idMissing+k] = true
			continue
		}
		if !aval.Equal(bval) {
			out[idValue+k] = true
		}
	}

	for name := range NeededDependencies(b, cctx) {
		if _, inA := a[name]; !inA {
			out[idDep+name] = true
		}
	}

	return out
}
