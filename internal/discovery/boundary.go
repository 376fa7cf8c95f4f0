package discovery

import (
	"context"
	"fmt"

	"github.com/WADELABS/negative-space/internal/types"
)

// BoundaryProbing inspects values sitting at the edges of declared limits
// and enumerations. A value exactly on a boundary signals an imminent but
// unconfirmed transition, so these candidates carry certainty below 1.0
// by construction.
type BoundaryProbing struct{}

// Name implements Strategy.
func (s *BoundaryProbing) Name() string { return StrategyBoundary }

// Philosophy implements Strategy.
func (s *BoundaryProbing) Philosophy() string {
	return "The edge of a declared range is where the next gap is about to open"
}

// Discover implements Strategy.
func (s *BoundaryProbing) Discover(ctx context.Context, in Input) (*Result, error) {
	result := &Result{}

	for _, name := range in.Context.LimitNames() {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		limit := in.Context.Limits[name]
		result.Examined++

		val, ok := in.PointB[name]
		if !ok {
			val, ok = in.PointA[name]
		}
		if !ok {
			result.Skipped++
			result.Candidates = append(result.Candidates,
				failureCandidate(s.Name(), name, "declared limit has no matching key in either state"))
			continue
		}

		if limit.Max != nil {
			if val.Kind() != types.KindNumber {
				result.Skipped++
				result.Candidates = append(result.Candidates,
					failureCandidate(s.Name(), name, fmt.Sprintf("numeric limit declared but value is %s", val.Kind())))
				continue
			}
			switch {
			case val.Num() == *limit.Max:
				result.Candidates = append(result.Candidates, types.CandidateGap{
					ID:           idBoundary + name,
					Type:         types.GapTemporal,
					Certainty:    0.6,
					Description:  fmt.Sprintf("value of %q sits exactly at its declared limit (%s); a transition is imminent but unconfirmed", name, val.Render()),
					Keys:         []string{name},
					DiscoveredBy: s.Name(),
				})
			case val.Num() > *limit.Max:
				result.Candidates = append(result.Candidates, types.CandidateGap{
					ID:           idBoundary + name,
					Type:         types.GapCapability,
					Certainty:    0.7,
					Description:  fmt.Sprintf("value of %q (%s) exceeds its declared limit (%g); headroom is missing", name, val.Render(), *limit.Max),
					Keys:         []string{name},
					DiscoveredBy: s.Name(),
				})
			}
			continue
		}

		if len(limit.Enum) > 0 {
			if val.Kind() != types.KindString {
				result.Skipped++
				result.Candidates = append(result.Candidates,
					failureCandidate(s.Name(), name, fmt.Sprintf("enumeration declared but value is %s", val.Kind())))
				continue
			}
			last := limit.Enum[len(limit.Enum)-1]
			known := false
			for _, e := range limit.Enum {
				if val.Str() == e {
					known = true
					break
				}
			}
			switch {
			case !known:
				result.Skipped++
				result.Candidates = append(result.Candidates,
					failureCandidate(s.Name(), name, fmt.Sprintf("value %q is outside the declared enumeration", val.Str())))
			case val.Str() == last:
				result.Candidates = append(result.Candidates, types.CandidateGap{
					ID:           idBoundary + name,
					Type:         types.GapCapability,
					Certainty:    0.6,
					Description:  fmt.Sprintf("value of %q (%s) is the final declared enumeration step; no further capability is declared beyond it", name, val.Str()),
					Keys:         []string{name},
					DiscoveredBy: s.Name(),
				})
			}
		}
	}

	return result, nil
}
