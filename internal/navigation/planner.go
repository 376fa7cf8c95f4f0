// Package navigation turns a void topology into an ordered closure plan.
// Gaps are sequenced in dependency order, most critical first among the
// ready set, and each step carries the navigation strategy that closes or
// routes around its gap. Unfillable blocking gaps are never dropped: they
// and everything waiting on them are named in the plan's unreachable
// section.
package navigation

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/WADELABS/negative-space/internal/topology"
	"github.com/WADELABS/negative-space/internal/types"
)

// Plan computes the navigation plan over the graph. The step order is a
// topological order of the reachable gaps; among simultaneously ready gaps
// the most critical goes first (UNKNOWN ranks as HIGH), ties broken by
// certainty descending, then by discovery order. Dependency cycles among
// reachable gaps do not stall the plan: when no gap is ready the same
// ordering picks the entry point into the cycle.
func Plan(g *topology.Graph) *types.NavigationPlan {
	gaps := g.Gaps()
	plan := &types.NavigationPlan{}

	unreachable, nearestRoot := unreachableSet(g)
	for i := range gaps {
		id := gaps[i].ID
		if !unreachable[id] {
			continue
		}
		entry := types.UnreachableGap{GapID: id}
		if nearestRoot[id] == id {
			entry.Reason = "unfillable blocking gap"
			entry.Blocks = transitiveDependents(g, id)
		} else {
			entry.Reason = fmt.Sprintf("depends on unreachable gap %q", nearestRoot[id])
		}
		plan.Unreachable = append(plan.Unreachable, entry)
	}

	order := topoOrder(g, unreachable)
	strategies := stepStrategies(g, unreachable, order)

	for _, i := range order {
		gap := &gaps[i]
		step := types.PlanStep{
			GapID:    gap.ID,
			Strategy: strategies[gap.ID],
		}
		switch step.Strategy {
		case types.StrategyConstraintCircumvention:
			step.RedefinedGoal = true
			step.Description = fmt.Sprintf("route around %s by redefining the dependent goal", gap.ID)
		case types.StrategyBoundarySkirting:
			step.Description = fmt.Sprintf("close %s as an alternative route past a blocked gap", gap.ID)
		case types.StrategyVoidBridging:
			step.Description = fmt.Sprintf("close %s on the shortest path to a blocking gap", gap.ID)
		default:
			step.Description = fmt.Sprintf("close %s", gap.ID)
		}
		plan.Steps = append(plan.Steps, step)
	}

	slog.Debug("navigation plan computed",
		"steps", len(plan.Steps), "unreachable", len(plan.Unreachable))

	return plan
}

// StepStrategies returns the planned strategy per gap id, for callers that
// need the assignment without the full plan (strategic clustering).
func StepStrategies(g *topology.Graph) map[string]types.NavStrategy {
	unreachable, _ := unreachableSet(g)
	return stepStrategies(g, unreachable, topoOrder(g, unreachable))
}

// unreachableSet returns the ids excluded from planning: unfillable
// blocking gaps and their transitive dependents. nearestRoot maps each
// member to the unfillable blocking gap that excludes it (itself for the
// roots).
func unreachableSet(g *topology.Graph) (map[string]bool, map[string]string) {
	gaps := g.Gaps()
	unreachable := map[string]bool{}
	nearestRoot := map[string]string{}

	var roots []string
	for i := range gaps {
		if gaps[i].Fillability == types.Unfillable &&
			gaps[i].Criticality == types.CriticalityBlocking {
			root := gaps[i].ID
			roots = append(roots, root)
			unreachable[root] = true
			nearestRoot[root] = root
		}
	}

	for _, root := range roots {
		stack := append([]string(nil), g.Dependents(root)...)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if unreachable[cur] {
				continue
			}
			unreachable[cur] = true
			nearestRoot[cur] = root
			stack = append(stack, g.Dependents(cur)...)
		}
	}

	return unreachable, nearestRoot
}

func transitiveDependents(g *topology.Graph, id string) []string {
	seen := map[string]bool{}
	stack := append([]string(nil), g.Dependents(id)...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, g.Dependents(cur)...)
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// topoOrder is Kahn's algorithm over the reachable gaps, returning indexes
// into the graph's gap slice.
func topoOrder(g *topology.Graph, unreachable map[string]bool) []int {
	gaps := g.Gaps()

	indeg := map[string]int{}
	remaining := map[string]bool{}
	for i := range gaps {
		id := gaps[i].ID
		if unreachable[id] {
			continue
		}
		remaining[id] = true
		for _, dep := range g.Dependencies(id) {
			if !unreachable[dep] {
				indeg[id]++
			}
		}
	}

	var order []int
	for len(remaining) > 0 {
		pick := -1
		ready := false
		for i := range gaps {
			id := gaps[i].ID
			if !remaining[id] {
				continue
			}
			if indeg[id] == 0 {
				if !ready || betterStep(&gaps[i], &gaps[pick]) {
					pick = i
				}
				ready = true
			}
		}
		if !ready {
			// A cycle among the remaining gaps: enter it at the most
			// critical member.
			for i := range gaps {
				id := gaps[i].ID
				if !remaining[id] {
					continue
				}
				if pick < 0 || betterStep(&gaps[i], &gaps[pick]) {
					pick = i
				}
			}
		}

		picked := gaps[pick].ID
		delete(remaining, picked)
		order = append(order, pick)
		for _, dep := range g.Dependents(picked) {
			if remaining[dep] && indeg[dep] > 0 {
				indeg[dep]--
			}
		}
	}

	return order
}

// betterStep reports whether a should be stepped before b: higher planning
// rank, then higher certainty. Callers iterate in discovery order, so an
// exact tie keeps the earlier gap.
func betterStep(a, b *types.Gap) bool {
	ra, rb := a.Criticality.PlanningRank(), b.Criticality.PlanningRank()
	if ra != rb {
		return ra > rb
	}
	return a.Certainty > b.Certainty
}

// stepStrategies labels every planned gap. Precedence:
// CONSTRAINT_CIRCUMVENTION for the unfillable gaps being routed around,
// BOUNDARY_SKIRTING for alternatives standing in for a blocked gap,
// VOID_BRIDGING for gaps on the chosen shortest path to a blocking gap,
// GAP_HOPPING otherwise.
func stepStrategies(g *topology.Graph, unreachable map[string]bool, order []int) map[string]types.NavStrategy {
	gaps := g.Gaps()
	out := make(map[string]types.NavStrategy, len(order))

	for _, i := range order {
		out[gaps[i].ID] = types.StrategyGapHopping
	}

	// Shortest prerequisite path to each reachable blocking gap.
	for _, i := range order {
		gap := &gaps[i]
		if gap.Criticality != types.CriticalityBlocking {
			continue
		}
		path := shortestPrerequisitePath(g, gap.ID, unreachable)
		if len(path) == 0 {
			continue
		}
		out[gap.ID] = types.StrategyVoidBridging
		for _, id := range path {
			out[id] = types.StrategyVoidBridging
		}
	}

	// Alternatives that skirt around a blocked blocking gap.
	for i := range gaps {
		gap := &gaps[i]
		if gap.Criticality != types.CriticalityBlocking {
			continue
		}
		blocked := unreachable[gap.ID] || gap.Fillability == types.Unfillable
		if !blocked {
			continue
		}
		for _, alt := range g.Similar(gap.ID) {
			if _, planned := out[alt]; !planned {
				continue
			}
			if a := g.Gap(alt); a != nil && a.Fillability == types.Fillable {
				out[alt] = types.StrategyBoundarySkirting
			}
		}
	}

	// Unfillable non-blocking gaps get routed around, not closed.
	for _, i := range order {
		if gaps[i].Fillability == types.Unfillable {
			out[gaps[i].ID] = types.StrategyConstraintCircumvention
		}
	}

	return out
}

// shortestPrerequisitePath walks the dependency chain of the target: at
// each gap the next prerequisite is the dependency with the fewest own
// dependencies, ties broken by higher certainty (cheaper to cross), then
// id. Returns the prerequisite ids, target excluded; empty when the target
// has no reachable dependencies.
func shortestPrerequisitePath(g *topology.Graph, target string, unreachable map[string]bool) []string {
	var path []string
	seen := map[string]bool{target: true}
	cur := target
	for {
		next := ""
		nextCost := 0
		var nextCertainty float64
		for _, dep := range g.Dependencies(cur) {
			if unreachable[dep] || seen[dep] {
				continue
			}
			d := g.Gap(dep)
			if d == nil {
				continue
			}
			cost := len(g.Dependencies(dep))
			switch {
			case next == "",
				cost < nextCost,
				cost == nextCost && d.Certainty > nextCertainty,
				cost == nextCost && d.Certainty == nextCertainty && dep < next:
				next = dep
				nextCost = cost
				nextCertainty = d.Certainty
			}
		}
		if next == "" {
			return path
		}
		seen[next] = true
		path = append(path, next)
		cur = next
	}
}
