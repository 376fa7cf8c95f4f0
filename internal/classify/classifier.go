package classify

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/WADELABS/negative-space/internal/types"
)

// Criticality thresholds on the downstream-impact fraction.
const (
	blockingImpact = 0.9
	highImpact     = 0.6
	mediumImpact   = 0.3
)

// unknownCertaintyCeiling bounds the certainty below which an isolated
// gap's impact is considered unassessable.
const unknownCertaintyCeiling = 0.5

// merged accumulates one gap's state during deduplication.
type merged struct {
	gap       types.Gap
	blocksAll bool
	keySet    map[string]bool
	depSet    map[string]bool
	provSet   map[string]bool
	descKey   string
}

// ClassifyAndMerge deduplicates candidates across strategies and assigns
// criticality and fillability. The result preserves first-seen insertion
// order, which downstream planning uses as its stable tie-break.
func ClassifyAndMerge(candidates []types.CandidateGap, cctx types.Context) []types.Gap {
	var order []*merged
	for i := range candidates {
		c := &candidates[i]
		m := findMatch(order, c)
		if m == nil {
			m = &merged{
				gap: types.Gap{
					ID:          c.ID,
					Type:        c.Type,
					Certainty:   c.Certainty,
					Description: c.Description,
				},
				keySet:  map[string]bool{},
				depSet:  map[string]bool{},
				provSet: map[string]bool{},
				descKey: normalizedKey(c),
			}
			order = append(order, m)
		}
		// Merge keeps the higher certainty and unions everything else.
		if c.Certainty > m.gap.Certainty {
			m.gap.Certainty = c.Certainty
		}
		m.blocksAll = m.blocksAll || c.BlocksAll
		if m.gap.ConstraintRef == "" {
			m.gap.ConstraintRef = c.ConstraintRef
		}
		m.provSet[c.DiscoveredBy] = true
		for _, k := range c.Keys {
			m.keySet[k] = true
		}
		for _, d := range c.Dependencies {
			m.depSet[d] = true
		}
	}

	ids := make(map[string]bool, len(order))
	for _, m := range order {
		ids[m.gap.ID] = true
	}

	gaps := make([]types.Gap, len(order))
	for i, m := range order {
		g := m.gap
		g.Keys = sortedSet(m.keySet)
		g.DiscoveredBy = sortedSet(m.provSet)
		// Drop dangling and self references.
		for _, d := range sortedSet(m.depSet) {
			if d != g.ID && ids[d] {
				g.Dependencies = append(g.Dependencies, d)
			}
		}
		gaps[i] = g
	}

	scoreCriticality(gaps, blocksAllSet(order))
	// Fillability reads the dependency graph, so it runs after any
	// blocking cycle has been broken and the edge set is final.
	breakBlockingCycles(gaps)
	assignFillability(gaps, cctx)

	slog.Debug("classification complete",
		"candidates", len(candidates), "gaps", len(gaps))

	return gaps
}

func blocksAllSet(order []*merged) map[string]bool {
	out := make(map[string]bool)
	for _, m := range order {
		if m.blocksAll {
			out[m.gap.ID] = true
		}
	}
	return out
}

// findMatch locates an existing merged gap equivalent to the candidate:
// same type and either overlapping touched keys or an identical
// normalized description.
func findMatch(order []*merged, c *types.CandidateGap) *merged {
	key := normalizedKey(c)
	for _, m := range order {
		if m.gap.Type != c.Type {
			continue
		}
		if m.descKey == key {
			return m
		}
		for _, k := range c.Keys {
			if m.keySet[k] {
				return m
			}
		}
	}
	return nil
}

func normalizedKey(c *types.CandidateGap) string {
	return strings.Join(c.NormalizedDescription(), " ")
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

// scoreCriticality applies the rule table over downstream impact.
func scoreCriticality(gaps []types.Gap, blocksAll map[string]bool) {
	n := len(gaps)
	dependents := reverseEdges(gaps)
	hasEdge := make(map[string]bool)
	for i := range gaps {
		if len(gaps[i].Dependencies) > 0 {
			hasEdge[gaps[i].ID] = true
			for _, d := range gaps[i].Dependencies {
				hasEdge[d] = true
			}
		}
	}

	for i := range gaps {
		g := &gaps[i]

		if blocksAll[g.ID] {
			g.Criticality = types.CriticalityBlocking
			continue
		}

		if !hasEdge[g.ID] && g.Certainty < unknownCertaintyCeiling {
			g.Criticality = types.CriticalityUnknown
			continue
		}

		f := 0.0
		if n > 1 {
			f = float64(len(downstream(g.ID, dependents))) / float64(n-1)
		}

		switch {
		case f >= blockingImpact:
			g.Criticality = types.CriticalityBlocking
		case f >= highImpact:
			g.Criticality = types.CriticalityHigh
		case f >= mediumImpact:
			g.Criticality = types.CriticalityMedium
		default:
			g.Criticality = types.CriticalityLow
		}

		// Structural gap types never score below MEDIUM.
		if (g.Type == types.GapConstraint || g.Type == types.GapDependency) &&
			g.Criticality == types.CriticalityLow {
			g.Criticality = types.CriticalityMedium
		}
	}
}

// reverseEdges builds dependent adjacency: dep id -> ids of gaps that
// wait on it.
func reverseEdges(gaps []types.Gap) map[string][]string {
	out := make(map[string][]string)
	for i := range gaps {
		for _, d := range gaps[i].Dependencies {
			out[d] = append(out[d], gaps[i].ID)
		}
	}
	return out
}

// downstream returns every gap id transitively waiting on the given id.
func downstream(id string, dependents map[string][]string) map[string]bool {
	seen := map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range dependents[cur] {
			if !seen[dep] {
				seen[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	delete(seen, id)
	return seen
}

// assignFillability classifies each gap as UNFILLABLE, EMERGENT, or
// FILLABLE.
func assignFillability(gaps []types.Gap, cctx types.Context) {
	cyclic := cycleMembers(gaps)

	for i := range gaps {
		g := &gaps[i]

		if g.ConstraintRef != "" {
			if c, ok := cctx.Constraints[g.ConstraintRef]; ok && c.Immutable {
				g.Fillability = types.Unfillable
				continue
			}
		}

		if cyclic[g.ID] || (len(g.Dependencies) >= 2 && !directlyWitnessed(g)) {
			g.Fillability = types.Emergent
			continue
		}

		g.Fillability = types.Fillable
	}
}

// directlyWitnessed reports whether any provenance entry corresponds to a
// direct A/B difference rather than an inferred interaction.
func directlyWitnessed(g *types.Gap) bool {
	for _, p := range g.DiscoveredBy {
		if p == "contrastive_analysis" || p == "constraint_propagation" {
			return true
		}
	}
	return false
}

// cycleMembers returns the ids of gaps participating in any dependency
// cycle.
func cycleMembers(gaps []types.Gap) map[string]bool {
	adj := make(map[string][]string, len(gaps))
	for i := range gaps {
		adj[gaps[i].ID] = gaps[i].Dependencies
	}

	members := map[string]bool{}
	for id := range adj {
		if onCycle(id, adj) {
			members[id] = true
		}
	}
	return members
}

// onCycle reports whether start can reach itself through the dependency
// relation.
func onCycle(start string, adj map[string][]string) bool {
	seen := map[string]bool{}
	stack := append([]string(nil), adj[start]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == start {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, adj[cur]...)
	}
	return false
}

// breakBlockingCycles restores the invariant that no dependency cycle
// passes through a BLOCKING gap: the lexicographically largest edge of
// each offending cycle is removed, deterministically. Non-blocking cycles
// are kept and already surfaced as emergent.
func breakBlockingCycles(gaps []types.Gap) {
	byID := make(map[string]*types.Gap, len(gaps))
	for i := range gaps {
		byID[gaps[i].ID] = &gaps[i]
	}

	for {
		adj := make(map[string][]string, len(gaps))
		for i := range gaps {
			adj[gaps[i].ID] = gaps[i].Dependencies
		}

		var worstFrom, worstTo string
		for i := range gaps {
			g := &gaps[i]
			if g.Criticality != types.CriticalityBlocking || !onCycle(g.ID, adj) {
				continue
			}
			// Any edge on a path back to g closes the cycle; removing
			// the largest edge inside the cycle's member set suffices.
			members := cycleEdgeSet(g.ID, adj)
			for _, e := range members {
				if worstFrom == "" || e[0] > worstFrom || (e[0] == worstFrom && e[1] > worstTo) {
					worstFrom, worstTo = e[0], e[1]
				}
			}
		}
		if worstFrom == "" {
			return
		}

		from := byID[worstFrom]
		kept := from.Dependencies[:0]
		for _, d := range from.Dependencies {
			if d != worstTo {
				kept = append(kept, d)
			}
		}
		from.Dependencies = kept
		slog.Debug("removed dependency edge to break blocking cycle",
			"from", worstFrom, "to", worstTo)
	}
}

// cycleEdgeSet returns the edges among nodes mutually reachable with
// start (its strongly connected neighborhood).
func cycleEdgeSet(start string, adj map[string][]string) [][2]string {
	scc := map[string]bool{}
	for n := range reachable(start, adj) {
		if reachable(n, adj)[start] {
			scc[n] = true
		}
	}
	var edges [][2]string
	for from := range scc {
		for _, to := range adj[from] {
			if scc[to] {
				edges = append(edges, [2]string{from, to})
			}
		}
	}
	return edges
}

func reachable(start string, adj map[string][]string) map[string]bool {
	seen := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[cur] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return seen
}

