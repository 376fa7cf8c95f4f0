package topology

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/WADELABS/negative-space/internal/discovery"
	"github.com/WADELABS/negative-space/internal/types"
)

const (
	densitySamples = 2000
	sampleBatch    = 64
	// maxChainExtension caps how far a sampled dependency chain is assumed
	// to extend past the resolvable surface.
	maxChainExtension = 16
)

// EstimateDensity computes void density: the criticality-weighted certainty
// mass of the gap set over the required surface of the target state. When
// the declared dependency graph makes the surface open-ended (a cycle, or a
// requirement chain that leaves the known key space), the denominator is
// estimated by Monte Carlo sampling instead; ctx bounds the sampling and a
// deadline hit yields the partial average with ReducedConfidence set.
func EstimateDensity(ctx context.Context, gaps []types.Gap, goal types.State, cctx types.Context) types.DensityEstimate {
	weighted := 0.0
	for i := range gaps {
		weighted += gaps[i].Certainty * gaps[i].Criticality.Weight()
	}

	surface, openEnded := requiredSurface(goal, cctx)

	if !openEnded {
		denom := float64(len(surface))
		if denom == 0 {
			denom = float64(len(gaps))
		}
		if denom == 0 {
			return types.DensityEstimate{Value: 0.0}
		}
		return types.DensityEstimate{Value: clamp01(weighted / denom)}
	}

	return monteCarloDensity(ctx, weighted, surface)
}

// requiredSurface is the set of state keys the target requires: its own
// keys plus every dependency name transitively reachable through the
// declared dependency graph. openEnded reports that the walk could not be
// bounded: the reachable declarations contain a cycle, or a requirement
// chain references names outside the known key space.
func requiredSurface(goal types.State, cctx types.Context) (map[string]bool, bool) {
	surface := make(map[string]bool, len(goal))
	for k := range goal {
		surface[k] = true
	}

	needed := discovery.NeededDependencies(goal, cctx)
	for name := range needed {
		surface[name] = true
	}

	// A dependency caught in a required-by cycle, or anchored to a name
	// that is neither a target key nor a declared dependency, never
	// resolves: the true surface extends past what the walk can see.
	openEnded := false
	for name, requiredBy := range cctx.Dependencies {
		if chainCycles(name, cctx.Dependencies) {
			openEnded = true
			break
		}
		if requiredBy == "" {
			continue
		}
		if _, inGoal := goal[requiredBy]; inGoal {
			continue
		}
		if _, declared := cctx.Dependencies[requiredBy]; declared {
			continue
		}
		openEnded = true
		break
	}

	return surface, openEnded
}

// chainCycles reports whether following required-by links from name ever
// revisits it.
func chainCycles(name string, deps map[string]string) bool {
	seen := map[string]bool{}
	cur := name
	for {
		next, ok := deps[cur]
		if !ok || next == "" {
			return false
		}
		if next == name {
			return true
		}
		if seen[next] {
			return false
		}
		seen[next] = true
		cur = next
	}
}

// monteCarloDensity samples plausible surface sizes beyond the resolvable
// set and reports the mean density with a 95% confidence interval. The
// generator is seeded from the surface contents, so repeated runs over the
// same inputs produce the same estimate.
func monteCarloDensity(ctx context.Context, weighted float64, surface map[string]bool) types.DensityEstimate {
	base := float64(len(surface))
	if base == 0 {
		base = 1
	}
	rng := rand.New(rand.NewSource(surfaceSeed(surface)))

	var (
		sum, sumSq float64
		n          int
		reduced    bool
	)

sampling:
	for n < densitySamples {
		if err := ctx.Err(); err != nil {
			reduced = true
			slog.Warn("density estimation cut short by deadline",
				"samples", n, "err", err)
			break sampling
		}
		for i := 0; i < sampleBatch && n < densitySamples; i++ {
			extra := 1
			for extra < maxChainExtension && rng.Float64() < 0.5 {
				extra++
			}
			v := clamp01(weighted / (base + float64(extra)))
			sum += v
			sumSq += v * v
			n++
		}
	}

	if n == 0 {
		// Deadline hit before the first batch: fall back to the bounded
		// estimate over the resolvable surface alone.
		return types.DensityEstimate{
			Value:             clamp01(weighted / base),
			MonteCarlo:        true,
			ReducedConfidence: true,
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	margin := 1.96 * math.Sqrt(variance) / math.Sqrt(float64(n))

	return types.DensityEstimate{
		Value:             mean,
		Low:               clamp01(mean - margin),
		High:              clamp01(mean + margin),
		MonteCarlo:        true,
		Samples:           n,
		ReducedConfidence: reduced,
	}
}

func surfaceSeed(surface map[string]bool) int64 {
	keys := make([]string, 0, len(surface))
	for k := range surface {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return int64(h.Sum64())
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
