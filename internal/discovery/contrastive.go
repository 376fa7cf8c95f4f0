package discovery

import (
	"context"
	"fmt"
	"sort"

	"github.com/WADELABS/negative-space/internal/types"
)

// ContrastiveAnalysis diffs Point A against Point B directly. Keys present
// in B but absent from A, keys whose values differ, and keys whose shapes
// differ all outline the void.
type ContrastiveAnalysis struct{}

// Name implements Strategy.
func (s *ContrastiveAnalysis) Name() string { return StrategyContrastive }

// Philosophy implements Strategy.
func (s *ContrastiveAnalysis) Philosophy() string {
	return "What the target declares and the current state lacks is the void's outline"
}

// Discover implements Strategy.
func (s *ContrastiveAnalysis) Discover(ctx context.Context, in Input) (*Result, error) {
	result := &Result{}
	s.diff(ctx, "", in.PointA, in.PointB, in, result)
	return result, ctx.Err()
}

// diff walks one nesting level of both states. Nested mappings recurse
// with dot-joined key paths.
func (s *ContrastiveAnalysis) diff(ctx context.Context, prefix string, a, b types.State, in Input, result *Result) {
	if ctx.Err() != nil {
		return
	}

	for _, key := range b.Keys() {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		bval := b[key]
		aval, inA := a[key]
		result.Examined++

		if !inA {
			gapType, constraintRef := inferMissingType(key, in.Context)
			result.Candidates = append(result.Candidates, types.CandidateGap{
				ID:            idMissing + path,
				Type:          gapType,
				Certainty:     1.0,
				Description:   fmt.Sprintf("attribute %q required by target state is absent from current state", path),
				Keys:          []string{path},
				DiscoveredBy:  s.Name(),
				ConstraintRef: constraintRef,
			})
			continue
		}

		if aval.Kind() != bval.Kind() {
			result.Candidates = append(result.Candidates, types.CandidateGap{
				ID:           idKind + path,
				Type:         types.GapInformation,
				Certainty:    1.0,
				Description:  fmt.Sprintf("attribute %q is %s in current state but %s in target state", path, aval.Kind(), bval.Kind()),
				Keys:         []string{path},
				DiscoveredBy: s.Name(),
			})
			continue
		}

		if aval.IsMap() {
			s.diff(ctx, path, types.State(aval.Map()), types.State(bval.Map()), in, result)
			continue
		}

		if !aval.Equal(bval) {
			gapType, constraintRef := inferChangeType(key, in.Context)
			result.Candidates = append(result.Candidates, types.CandidateGap{
				ID:        idValue + path,
				Type:      gapType,
				Certainty: 0.9,
				Description: fmt.Sprintf("attribute %q must change from %q to %q",
					path, aval.Render(), bval.Render()),
				Keys:          []string{path},
				DiscoveredBy:  s.Name(),
				ConstraintRef: constraintRef,
			})
		}
	}

	// Keys A carries that B never mentions are unaccounted-for framing:
	// the target's concept of the system omits them.
	aOnly := make([]string, 0)
	for key := range a {
		if _, inB := b[key]; !inB {
			aOnly = append(aOnly, key)
		}
	}
	sort.Strings(aOnly)
	for _, key := range aOnly {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		result.Examined++
		result.Candidates = append(result.Candidates, types.CandidateGap{
			ID:           idSurplus + path,
			Type:         types.GapConceptual,
			Certainty:    0.4,
			Description:  fmt.Sprintf("attribute %q present in current state is unaccounted for in target state", path),
			Keys:         []string{path},
			DiscoveredBy: s.Name(),
		})
	}
}
