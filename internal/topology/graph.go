package topology

import (
	"github.com/WADELABS/negative-space/internal/types"
)

// Graph is the void topology over one classified gap set. Edges are
// directed; similarity edges are stored in both directions. The graph
// holds the gaps by value and never mutates them.
type Graph struct {
	gaps  []types.Gap
	index map[string]int

	deps       map[string][]string
	dependents map[string][]string
	similar    map[string][]string

	depEdges     int
	similarEdges int
}

// Build constructs the graph: dependency edges from each gap's declared
// dependencies, plus an inferred similarity edge between every pair of
// gaps sharing a type and at least one touched key. Adjacency lists
// preserve gap insertion order, so the graph is deterministic for a given
// gap slice.
func Build(gaps []types.Gap) *Graph {
	g := &Graph{
		gaps:       gaps,
		index:      make(map[string]int, len(gaps)),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
		similar:    make(map[string][]string),
	}
	for i := range gaps {
		g.index[gaps[i].ID] = i
	}

	for i := range gaps {
		for _, dep := range gaps[i].Dependencies {
			if _, ok := g.index[dep]; !ok {
				continue
			}
			g.deps[gaps[i].ID] = append(g.deps[gaps[i].ID], dep)
			g.dependents[dep] = append(g.dependents[dep], gaps[i].ID)
			g.depEdges++
		}
	}

	for i := range gaps {
		for j := i + 1; j < len(gaps); j++ {
			if gaps[i].Type != gaps[j].Type {
				continue
			}
			if !keysOverlap(gaps[i].Keys, gaps[j].Keys) {
				continue
			}
			g.similar[gaps[i].ID] = append(g.similar[gaps[i].ID], gaps[j].ID)
			g.similar[gaps[j].ID] = append(g.similar[gaps[j].ID], gaps[i].ID)
			g.similarEdges += 2
		}
	}

	return g
}

func keysOverlap(a, b []string) bool {
	for _, ka := range a {
		for _, kb := range b {
			if ka == kb {
				return true
			}
		}
	}
	return false
}

// Gaps returns the gap set the graph was built over.
func (g *Graph) Gaps() []types.Gap { return g.gaps }

// Gap returns the gap with the given id, or nil.
func (g *Graph) Gap(id string) *types.Gap {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return &g.gaps[i]
}

// Dependencies returns the ids the given gap directly depends on.
func (g *Graph) Dependencies(id string) []string { return g.deps[id] }

// Dependents returns the ids of gaps directly waiting on the given gap.
func (g *Graph) Dependents(id string) []string { return g.dependents[id] }

// Similar returns the ids connected to the given gap by similarity edges.
func (g *Graph) Similar(id string) []string { return g.similar[id] }

// EdgeCount returns the total number of directed edges, dependency and
// similarity combined.
func (g *Graph) EdgeCount() int { return g.depEdges + g.similarEdges }

// Connectivity is the directed edge density: edges / (n * (n-1)). Zero
// for graphs with fewer than two gaps.
func (g *Graph) Connectivity() float64 {
	n := len(g.gaps)
	if n < 2 {
		return 0.0
	}
	return float64(g.EdgeCount()) / float64(n*(n-1))
}

// Navigability is the fraction of the gap set not stuck behind a blocking
// gap that cannot be closed: 1 - (blocked blocking gaps / total gaps). A
// blocking gap counts as blocked when it is unfillable, or transitively
// depends on an unfillable gap, and no similar fillable gap offers an
// alternative route. An empty gap set is perfectly navigable.
func (g *Graph) Navigability() float64 {
	n := len(g.gaps)
	if n == 0 {
		return 1.0
	}

	blocked := 0
	for i := range g.gaps {
		gap := &g.gaps[i]
		if gap.Criticality != types.CriticalityBlocking {
			continue
		}
		if !g.stuck(gap.ID) {
			continue
		}
		if g.hasFillableAlternative(gap.ID) {
			continue
		}
		blocked++
	}

	return 1.0 - float64(blocked)/float64(n)
}

// stuck reports whether the gap is unfillable or transitively depends on
// an unfillable gap.
func (g *Graph) stuck(id string) bool {
	seen := map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		gap := g.Gap(cur)
		if gap == nil {
			continue
		}
		if gap.Fillability == types.Unfillable {
			return true
		}
		stack = append(stack, g.deps[cur]...)
	}
	return false
}

// hasFillableAlternative reports whether a similarity edge leads from the
// gap to a fillable gap that is not itself stuck.
func (g *Graph) hasFillableAlternative(id string) bool {
	for _, alt := range g.similar[id] {
		gap := g.Gap(alt)
		if gap == nil {
			continue
		}
		if gap.Fillability == types.Fillable && !g.stuck(alt) {
			return true
		}
	}
	return false
}
