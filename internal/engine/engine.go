// Package engine runs the full mapping pipeline for a single observer:
// discovery, classification, topology, navigation, clustering, and report
// assembly. The pipeline is deterministic for identical inputs; report ids
// are derived from the inputs so repeated runs produce the same id.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/WADELABS/negative-space/internal/classify"
	"github.com/WADELABS/negative-space/internal/discovery"
	"github.com/WADELABS/negative-space/internal/navigation"
	"github.com/WADELABS/negative-space/internal/topology"
	"github.com/WADELABS/negative-space/internal/types"
)

// Engine maps the void between two states under one configuration.
type Engine struct {
	config   *discovery.Config
	registry *discovery.Registry
}

// New creates an engine with the default strategy registry. A nil config
// uses defaults.
func New(config *discovery.Config) *Engine {
	if config == nil {
		config = discovery.DefaultConfig()
	}
	return &Engine{
		config:   config,
		registry: discovery.NewDefaultRegistry(),
	}
}

// Config returns the engine's discovery configuration.
func (e *Engine) Config() *discovery.Config { return e.config }

// Map runs the pipeline over the (A, B, context) triple and returns the
// report. Inputs are read-only; the returned report is owned by the
// caller. Map fails only on unresolvable configuration; every runtime
// degradation is folded into the report.
func (e *Engine) Map(ctx context.Context, pointA, pointB, rawContext types.State) (*types.VoidReport, error) {
	start := time.Now()
	cctx := types.ParseContext(rawContext)

	orch := discovery.NewOrchestrator(e.registry, e.config)
	disc, err := orch.Discover(ctx, discovery.Input{
		PointA:  pointA,
		PointB:  pointB,
		Context: cctx,
		Rigor:   e.config.Rigor,
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}

	gaps := classify.ClassifyAndMerge(disc.Candidates, cctx)

	id := RunID(pointA, pointB, rawContext, e.config.Rigor)
	in := Inputs{PointA: pointA, PointB: pointB, RawContext: rawContext}
	report := Assemble(ctx, id, gaps, in, cctx, e.config.EstimateDeadline, disc.Degradations)

	slog.Info("void mapping complete",
		"report", report.ID,
		"gaps", len(gaps),
		"density", report.Density.Value,
		"duration", time.Since(start))

	return report, nil
}

// Inputs is the raw state triple of one mapping run, echoed into the
// report so stored reports stay self-describing.
type Inputs struct {
	PointA     types.State
	PointB     types.State
	RawContext types.State
}

// Assemble builds the report over an already-classified gap set: topology,
// density, plan, clusters, summary, and patterns. Shared by the
// single-observer pipeline and the collective's post-consensus pass.
func Assemble(ctx context.Context, id string, gaps []types.Gap, in Inputs, cctx types.Context, estimateDeadline time.Duration, degradations []string) *types.VoidReport {
	graph := topology.Build(gaps)

	estCtx := ctx
	if estimateDeadline > 0 {
		var cancel context.CancelFunc
		estCtx, cancel = context.WithTimeout(ctx, estimateDeadline)
		defer cancel()
	}
	density := topology.EstimateDensity(estCtx, gaps, in.PointB, cctx)

	plan := navigation.Plan(graph)
	clusters := topology.Clusterize(graph, gaps, navigation.StepStrategies(graph))

	report := &types.VoidReport{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Inputs: types.ReportInputs{
			PointA:  in.PointA,
			PointB:  in.PointB,
			Context: in.RawContext,
		},
		Gaps: gaps,
		Density:   density,
		Summary: types.Summary{
			TotalGaps:     len(gaps),
			VoidDensity:   density.Value,
			Navigability:  graph.Navigability(),
			Connectivity:  graph.Connectivity(),
			BlockingCount: countCriticality(gaps, types.CriticalityBlocking),
			FillableCount: countFillability(gaps, types.Fillable),
		},
		CriticalFindings: criticalFindings(gaps),
		NavigationPlan:   *plan,
		Clusters:         clusters,
		Degradations:     degradations,
	}
	if density.ReducedConfidence {
		report.Degradations = append(report.Degradations,
			"density estimation: deadline exceeded, partial estimate reported")
	}
	report.Patterns = buildPatterns(report)
	return report
}

// RunID derives a stable report id from the inputs and the observer
// rigor(s): identical runs get identical ids. States hash through their
// canonical JSON form (sorted keys, full nesting), so any difference at
// any depth yields a distinct id.
func RunID(pointA, pointB, rawContext types.State, rigors ...float64) string {
	h := sha256.New()
	for _, s := range []types.State{pointA, pointB, rawContext} {
		for _, k := range s.Keys() {
			// Value marshaling is total over the kinds FromAny admits.
			data, _ := json.Marshal(s[k])
			fmt.Fprintf(h, "%s=%s\n", k, data)
		}
		h.Write([]byte{0})
	}
	for _, r := range rigors {
		fmt.Fprintf(h, "rigor=%.4f\n", r)
	}
	return "void-" + hex.EncodeToString(h.Sum(nil))[:16]
}

// criticalFindings returns the BLOCKING and HIGH gaps ordered by
// criticality, then certainty descending.
func criticalFindings(gaps []types.Gap) []types.Gap {
	var out []types.Gap
	for i := range gaps {
		switch gaps[i].Criticality {
		case types.CriticalityBlocking, types.CriticalityHigh:
			out = append(out, gaps[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Criticality.PlanningRank(), out[j].Criticality.PlanningRank()
		if ri != rj {
			return ri > rj
		}
		return out[i].Certainty > out[j].Certainty
	})
	return out
}

func countCriticality(gaps []types.Gap, c types.Criticality) int {
	n := 0
	for i := range gaps {
		if gaps[i].Criticality == c {
			n++
		}
	}
	return n
}

func countFillability(gaps []types.Gap, f types.Fillability) int {
	n := 0
	for i := range gaps {
		if gaps[i].Fillability == f {
			n++
		}
	}
	return n
}
