package collective

import (
	"sort"

	"github.com/WADELABS/negative-space/internal/types"
)

// finding is one observer's sighting of a gap.
type finding struct {
	observer int
	rigor    float64
	gap      *types.Gap
}

// group collects the sightings of what arbitration considers one gap.
type group struct {
	findings []finding
	keySet   map[string]bool
}

// arbitrate merges the observers' gap sets into one. Gaps are grouped by
// type and key overlap; a group seen by a majority of observers is
// retained with rigor-weighted mean certainty, a minority group only when
// some observer rated it BLOCKING. Criticality resolves to the most severe
// level reported; fillability likewise resolves conservatively.
func (c *Collective) arbitrate(reports []*types.VoidReport) ([]types.Gap, []string) {
	var groups []*group
	var degradations []string

	for i, report := range reports {
		degradations = append(degradations, report.Degradations...)
		for j := range report.Gaps {
			gap := &report.Gaps[j]
			grp := matchGroup(groups, gap)
			if grp == nil {
				grp = &group{keySet: map[string]bool{}}
				groups = append(groups, grp)
			}
			grp.findings = append(grp.findings, finding{
				observer: i,
				rigor:    c.observers[i].Rigor,
				gap:      gap,
			})
			for _, k := range gap.Keys {
				grp.keySet[k] = true
			}
		}
	}

	majority := len(reports)/2 + 1

	var gaps []types.Gap
	kept := map[string]bool{}
	for _, grp := range groups {
		observerCount := grp.observerCount()
		if observerCount < majority && !grp.anyBlocking() {
			continue
		}
		g := grp.merge()
		gaps = append(gaps, g)
		kept[g.ID] = true
	}

	// Dependency edges may point at gaps arbitration dropped.
	for i := range gaps {
		var deps []string
		for _, d := range gaps[i].Dependencies {
			if kept[d] && d != gaps[i].ID {
				deps = append(deps, d)
			}
		}
		gaps[i].Dependencies = deps
	}

	return gaps, degradations
}

// matchGroup finds the group the gap belongs to: same type and either the
// same id or overlapping touched keys.
func matchGroup(groups []*group, gap *types.Gap) *group {
	for _, grp := range groups {
		if grp.findings[0].gap.Type != gap.Type {
			continue
		}
		if grp.findings[0].gap.ID == gap.ID {
			return grp
		}
		for _, k := range gap.Keys {
			if grp.keySet[k] {
				return grp
			}
		}
	}
	return nil
}

func (g *group) observerCount() int {
	seen := map[int]bool{}
	for _, f := range g.findings {
		seen[f.observer] = true
	}
	return len(seen)
}

func (g *group) anyBlocking() bool {
	for _, f := range g.findings {
		if f.gap.Criticality == types.CriticalityBlocking {
			return true
		}
	}
	return false
}

// merge reconciles a group into one gap. Identity and description come
// from the first sighting; certainty is the rigor-weighted mean;
// criticality and fillability resolve to the most severe reported.
func (g *group) merge() types.Gap {
	first := g.findings[0].gap
	out := types.Gap{
		ID:            first.ID,
		Type:          first.Type,
		Description:   first.Description,
		ConstraintRef: first.ConstraintRef,
	}

	var weightedSum, rigorSum float64
	keySet := map[string]bool{}
	depSet := map[string]bool{}
	provSet := map[string]bool{}

	out.Criticality = first.Criticality
	out.Fillability = first.Fillability
	for _, f := range g.findings {
		weightedSum += f.rigor * f.gap.Certainty
		rigorSum += f.rigor
		out.Criticality = types.MaxCriticality(out.Criticality, f.gap.Criticality)
		out.Fillability = worseFillability(out.Fillability, f.gap.Fillability)
		if out.ConstraintRef == "" {
			out.ConstraintRef = f.gap.ConstraintRef
		}
		for _, k := range f.gap.Keys {
			keySet[k] = true
		}
		for _, d := range f.gap.Dependencies {
			depSet[d] = true
		}
		for _, p := range f.gap.DiscoveredBy {
			provSet[p] = true
		}
	}

	if rigorSum > 0 {
		out.Certainty = weightedSum / rigorSum
	}
	out.Keys = sortedSet(keySet)
	out.Dependencies = sortedSet(depSet)
	out.DiscoveredBy = sortedSet(provSet)
	return out
}

// worseFillability resolves disagreement toward the harder case: a gap one
// observer cannot fill is treated as unfillable, and an interaction
// sighting beats a direct one.
func worseFillability(a, b types.Fillability) types.Fillability {
	if a == types.Unfillable || b == types.Unfillable {
		return types.Unfillable
	}
	if a == types.Emergent || b == types.Emergent {
		return types.Emergent
	}
	return types.Fillable
}

func sortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
