package topology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/WADELABS/negative-space/internal/types"
)

// minClusterSize filters out singleton groups: a cluster of one gap adds
// no information over the gap itself.
const minClusterSize = 2

// minTokenLen drops short connective words from semantic comparison.
const minTokenLen = 4

// Clusterize groups gaps under the three independent criteria. Strategies
// maps gap id to its planned navigation strategy and drives the strategic
// criterion; it may be nil when no plan pass has run. The structural
// criterion's cluster ids are written back to the gaps; that assignment is
// the only post-classification gap mutation.
func Clusterize(g *Graph, gaps []types.Gap, strategies map[string]types.NavStrategy) []types.Cluster {
	var clusters []types.Cluster

	clusters = append(clusters, semanticClusters(gaps)...)

	structural := structuralClusters(g, gaps)
	clusters = append(clusters, structural...)
	for _, c := range structural {
		for _, id := range c.GapIDs {
			for i := range gaps {
				if gaps[i].ID == id {
					gaps[i].ClusterID = c.ID
				}
			}
		}
	}

	clusters = append(clusters, strategicClusters(gaps, strategies)...)

	return clusters
}

// semanticClusters unions gaps of the same type whose descriptions share a
// substantive token.
func semanticClusters(gaps []types.Gap) []types.Cluster {
	uf := newUnionFind(len(gaps))
	tokens := make([]map[string]bool, len(gaps))
	for i := range gaps {
		tokens[i] = descriptionTokens(gaps[i].Description)
	}

	for i := range gaps {
		for j := i + 1; j < len(gaps); j++ {
			if gaps[i].Type != gaps[j].Type {
				continue
			}
			if tokensOverlap(tokens[i], tokens[j]) {
				uf.union(i, j)
			}
		}
	}

	return collect(gaps, uf.groups(), types.ClusterSemantic)
}

// structuralClusters are the weakly connected components of the dependency
// graph.
func structuralClusters(g *Graph, gaps []types.Gap) []types.Cluster {
	uf := newUnionFind(len(gaps))
	index := make(map[string]int, len(gaps))
	for i := range gaps {
		index[gaps[i].ID] = i
	}
	for i := range gaps {
		for _, dep := range g.Dependencies(gaps[i].ID) {
			if j, ok := index[dep]; ok {
				uf.union(i, j)
			}
		}
	}

	return collect(gaps, uf.groups(), types.ClusterStructural)
}

// strategicClusters group gaps assigned the same navigation strategy.
func strategicClusters(gaps []types.Gap, strategies map[string]types.NavStrategy) []types.Cluster {
	if len(strategies) == 0 {
		return nil
	}

	byStrategy := map[types.NavStrategy][]int{}
	var order []types.NavStrategy
	for i := range gaps {
		s, ok := strategies[gaps[i].ID]
		if !ok {
			continue
		}
		if _, seen := byStrategy[s]; !seen {
			order = append(order, s)
		}
		byStrategy[s] = append(byStrategy[s], i)
	}

	var groups [][]int
	for _, s := range order {
		groups = append(groups, byStrategy[s])
	}
	return collect(gaps, groups, types.ClusterStrategic)
}

// collect turns index groups into clusters, skipping singletons. Cluster
// ids number the groups by first-member insertion order.
func collect(gaps []types.Gap, groups [][]int, criterion types.ClusterCriterion) []types.Cluster {
	var clusters []types.Cluster
	seq := 0
	for _, group := range groups {
		if len(group) < minClusterSize {
			continue
		}
		seq++
		c := types.Cluster{
			ID:        fmt.Sprintf("%s-%d", criterion, seq),
			Criterion: criterion,
		}
		typeCounts := map[types.GapType]int{}
		for _, i := range group {
			c.GapIDs = append(c.GapIDs, gaps[i].ID)
			typeCounts[gaps[i].Type]++
		}
		c.DominantType = dominantType(gaps, group, typeCounts)
		clusters = append(clusters, c)
	}
	return clusters
}

// dominantType is the most common type in the group; ties go to the type
// seen first.
func dominantType(gaps []types.Gap, group []int, counts map[types.GapType]int) types.GapType {
	var best types.GapType
	bestCount := 0
	for _, i := range group {
		t := gaps[i].Type
		if counts[t] > bestCount {
			best = t
			bestCount = counts[t]
		}
	}
	return best
}

func descriptionTokens(desc string) map[string]bool {
	out := map[string]bool{}
	for _, f := range strings.Fields(strings.ToLower(desc)) {
		f = strings.Trim(f, `"'.,:;()`)
		if len(f) >= minTokenLen {
			out[f] = true
		}
	}
	return out
}

func tokensOverlap(a, b map[string]bool) bool {
	for t := range a {
		if b[t] {
			return true
		}
	}
	return false
}

// unionFind is a plain disjoint-set over gap indexes.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri != rj {
		// Attach the larger root to the smaller index so group order
		// follows first membership.
		if ri < rj {
			uf.parent[rj] = ri
		} else {
			uf.parent[ri] = rj
		}
	}
}

// groups returns the member indexes per set, ordered by each set's
// smallest index, members in index order.
func (uf *unionFind) groups() [][]int {
	byRoot := map[int][]int{}
	var roots []int
	for i := range uf.parent {
		r := uf.find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], i)
	}
	sort.Ints(roots)
	out := make([][]int, 0, len(roots))
	for _, r := range roots {
		out = append(out, byRoot[r])
	}
	return out
}
