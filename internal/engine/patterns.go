package engine

import (
	"fmt"

	"github.com/WADELABS/negative-space/internal/types"
)

// buildPatterns aggregates distribution counts over the report's gap set
// and derives the narrative insights and recommendations.
func buildPatterns(report *types.VoidReport) types.Patterns {
	gaps := report.Gaps
	p := types.Patterns{
		TypeCounts:        map[types.GapType]int{},
		CriticalityCounts: map[types.Criticality]int{},
	}

	fillable := 0
	unfillable := 0
	emergent := 0
	for i := range gaps {
		p.TypeCounts[gaps[i].Type]++
		p.CriticalityCounts[gaps[i].Criticality]++
		switch gaps[i].Fillability {
		case types.Fillable:
			fillable++
		case types.Unfillable:
			unfillable++
		case types.Emergent:
			emergent++
		}
	}
	if len(gaps) > 0 {
		p.FillabilityRate = float64(fillable) / float64(len(gaps))
	}

	p.Insights = insights(report, p, emergent)
	p.Recommendations = recommendations(report, unfillable)
	return p
}

func insights(report *types.VoidReport, p types.Patterns, emergent int) []string {
	var out []string

	if len(report.Gaps) == 0 {
		return []string{"no gaps found between current and target state"}
	}

	switch {
	case report.Summary.VoidDensity >= 0.7:
		out = append(out, fmt.Sprintf(
			"the void is dense (%.2f): most of the target surface is missing",
			report.Summary.VoidDensity))
	case report.Summary.VoidDensity <= 0.2:
		out = append(out, fmt.Sprintf(
			"the void is sparse (%.2f): the target is mostly in reach",
			report.Summary.VoidDensity))
	}

	if n := p.CriticalityCounts[types.CriticalityBlocking]; n > 0 {
		out = append(out, fmt.Sprintf("%d blocking gap(s) stand between the states", n))
	}

	if dom, n := dominantTypeCount(p.TypeCounts); n*2 > len(report.Gaps) {
		out = append(out, fmt.Sprintf(
			"gaps concentrate in one category: %d of %d are %s",
			n, len(report.Gaps), dom))
	}

	if emergent > 0 {
		out = append(out, fmt.Sprintf(
			"%d gap(s) are emergent: they arise from interactions between other gaps",
			emergent))
	}

	if report.Density.ReducedConfidence {
		out = append(out, "density estimate carries reduced confidence")
	}

	return out
}

func recommendations(report *types.VoidReport, unfillable int) []string {
	var out []string

	if len(report.NavigationPlan.Steps) > 0 {
		first := report.NavigationPlan.Steps[0]
		out = append(out, fmt.Sprintf("start with %s (%s)", first.GapID, first.Strategy))
	}

	if n := len(report.NavigationPlan.Unreachable); n > 0 {
		out = append(out, fmt.Sprintf(
			"%d gap(s) are unreachable: redefine the goal or relax the blocking constraint", n))
	} else if unfillable > 0 {
		out = append(out, fmt.Sprintf(
			"%d unfillable gap(s) must be routed around rather than closed", unfillable))
	}

	if report.Summary.FillableCount == report.Summary.TotalGaps &&
		report.Summary.TotalGaps > 0 {
		out = append(out, "every gap is fillable: sequential closure reaches the target")
	}

	if report.Summary.Navigability < 0.5 {
		out = append(out, fmt.Sprintf(
			"navigability is low (%.2f): consider a smaller intermediate target",
			report.Summary.Navigability))
	}

	return out
}

// dominantTypeCount returns the most common gap type and its count, ties
// resolved by type name for determinism.
func dominantTypeCount(counts map[types.GapType]int) (types.GapType, int) {
	var dom types.GapType
	best := 0
	for t, n := range counts {
		if n > best || (n == best && string(t) < string(dom)) {
			dom = t
			best = n
		}
	}
	return dom, best
}
