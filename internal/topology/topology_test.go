package topology

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WADELABS/negative-space/internal/types"
)

func gap(id string, t types.GapType, c types.Criticality, f types.Fillability, certainty float64, keys []string, deps ...string) types.Gap {
	return types.Gap{
		ID: id, Type: t, Criticality: c, Fillability: f,
		Certainty: certainty, Description: id,
		DiscoveredBy: []string{"contrastive_analysis"},
		Keys:         keys, Dependencies: deps,
	}
}

func TestBuildEdges(t *testing.T) {
	gaps := []types.Gap{
		gap("missing:a", types.GapDependency, types.CriticalityMedium, types.Fillable, 1.0, []string{"a"}, "dep:b"),
		gap("dep:b", types.GapDependency, types.CriticalityMedium, types.Fillable, 0.9, []string{"b"}),
		gap("missing:c", types.GapDependency, types.CriticalityLow, types.Fillable, 1.0, []string{"a", "c"}),
	}

	g := Build(gaps)

	assert.Equal(t, []string{"dep:b"}, g.Dependencies("missing:a"))
	assert.Equal(t, []string{"missing:a"}, g.Dependents("dep:b"))

	// missing:a and missing:c share a type and the key "a".
	assert.Equal(t, []string{"missing:c"}, g.Similar("missing:a"))
	assert.Equal(t, []string{"missing:a"}, g.Similar("missing:c"))

	// 1 dependency edge + 2 directed similarity edges.
	assert.Equal(t, 3, g.EdgeCount())
	assert.InDelta(t, 3.0/6.0, g.Connectivity(), 1e-9)
}

func TestBuildIgnoresDanglingDependencies(t *testing.T) {
	gaps := []types.Gap{
		gap("missing:a", types.GapDependency, types.CriticalityMedium, types.Fillable, 1.0, []string{"a"}, "dep:ghost"),
	}
	g := Build(gaps)
	assert.Empty(t, g.Dependencies("missing:a"))
	assert.Equal(t, 0, g.EdgeCount())
}

func TestNavigability(t *testing.T) {
	t.Run("empty set is fully navigable", func(t *testing.T) {
		assert.Equal(t, 1.0, Build(nil).Navigability())
	})

	t.Run("unfillable blocking gap is blocked", func(t *testing.T) {
		gaps := []types.Gap{
			gap("constraint:budget", types.GapConstraint, types.CriticalityBlocking, types.Unfillable, 0.95, []string{"funding"}),
			gap("missing:a", types.GapInformation, types.CriticalityLow, types.Fillable, 1.0, []string{"a"}),
		}
		assert.InDelta(t, 0.5, Build(gaps).Navigability(), 1e-9)
	})

	t.Run("blocking gap stuck behind unfillable dependency", func(t *testing.T) {
		gaps := []types.Gap{
			gap("missing:root", types.GapDependency, types.CriticalityBlocking, types.Fillable, 1.0, []string{"root"}, "constraint:lock"),
			gap("constraint:lock", types.GapConstraint, types.CriticalityMedium, types.Unfillable, 0.9, []string{"lock"}),
		}
		assert.InDelta(t, 0.5, Build(gaps).Navigability(), 1e-9)
	})

	t.Run("similar fillable gap restores the route", func(t *testing.T) {
		gaps := []types.Gap{
			gap("missing:root", types.GapDependency, types.CriticalityBlocking, types.Unfillable, 1.0, []string{"root"}),
			gap("dep:root", types.GapDependency, types.CriticalityMedium, types.Fillable, 0.9, []string{"root"}),
		}
		assert.Equal(t, 1.0, Build(gaps).Navigability())
	})

	t.Run("fillable blocking gap is not blocked", func(t *testing.T) {
		gaps := []types.Gap{
			gap("missing:root", types.GapDependency, types.CriticalityBlocking, types.Fillable, 1.0, []string{"root"}),
		}
		assert.Equal(t, 1.0, Build(gaps).Navigability())
	})
}

func TestEstimateDensityBounded(t *testing.T) {
	goal := types.State{
		"api":      types.StringValue("deployed"),
		"database": types.StringValue("postgres"),
	}
	gaps := []types.Gap{
		gap("missing:api", types.GapDependency, types.CriticalityBlocking, types.Fillable, 1.0, []string{"api"}),
		gap("missing:database", types.GapDependency, types.CriticalityMedium, types.Fillable, 1.0, []string{"database"}),
	}

	est := EstimateDensity(context.Background(), gaps, goal, types.Context{})

	assert.False(t, est.MonteCarlo)
	assert.False(t, est.ReducedConfidence)
	// (1.0*1.0 + 1.0*0.4) / 2 keys of surface.
	assert.InDelta(t, 0.7, est.Value, 1e-9)
}

func TestEstimateDensityIncludesDependencySurface(t *testing.T) {
	goal := types.State{"api": types.StringValue("deployed")}
	cctx := types.Context{Dependencies: map[string]string{
		"docker": "api",
		"linux":  "docker",
	}}
	gaps := []types.Gap{
		gap("missing:api", types.GapDependency, types.CriticalityBlocking, types.Fillable, 1.0, []string{"api"}),
	}

	est := EstimateDensity(context.Background(), gaps, goal, cctx)

	assert.False(t, est.MonteCarlo)
	// Surface is {api, docker, linux}.
	assert.InDelta(t, 1.0/3.0, est.Value, 1e-9)
}

func TestEstimateDensityEmptyInputs(t *testing.T) {
	est := EstimateDensity(context.Background(), nil, types.State{}, types.Context{})
	assert.Equal(t, 0.0, est.Value)
}

func TestEstimateDensityMonteCarlo(t *testing.T) {
	goal := types.State{"api": types.StringValue("deployed")}
	// A required-by cycle makes the surface open-ended.
	cctx := types.Context{Dependencies: map[string]string{
		"docker": "api",
		"x":      "y",
		"y":      "x",
	}}
	gaps := []types.Gap{
		gap("missing:api", types.GapDependency, types.CriticalityBlocking, types.Fillable, 1.0, []string{"api"}),
	}

	est := EstimateDensity(context.Background(), gaps, goal, cctx)

	require.True(t, est.MonteCarlo)
	assert.False(t, est.ReducedConfidence)
	assert.Equal(t, densitySamples, est.Samples)
	assert.Greater(t, est.Value, 0.0)
	assert.Less(t, est.Value, 1.0)
	assert.LessOrEqual(t, est.Low, est.Value)
	assert.GreaterOrEqual(t, est.High, est.Value)

	// Same inputs, same estimate.
	again := EstimateDensity(context.Background(), gaps, goal, cctx)
	assert.Equal(t, est, again)
}

func TestEstimateDensityDeadlinePartialAverage(t *testing.T) {
	goal := types.State{"api": types.StringValue("deployed")}
	cctx := types.Context{Dependencies: map[string]string{
		"x": "y",
		"y": "x",
	}}
	gaps := []types.Gap{
		gap("missing:api", types.GapDependency, types.CriticalityBlocking, types.Fillable, 1.0, []string{"api"}),
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	est := EstimateDensity(ctx, gaps, goal, cctx)

	assert.True(t, est.MonteCarlo)
	assert.True(t, est.ReducedConfidence)
	// A partial (or surface-only fallback) estimate is still reported.
	assert.GreaterOrEqual(t, est.Value, 0.0)
	assert.LessOrEqual(t, est.Value, 1.0)
}

func TestClusterize(t *testing.T) {
	gaps := []types.Gap{
		gap("missing:monitoring", types.GapDependency, types.CriticalityHigh, types.Fillable, 1.0, []string{"monitoring"}, "dep:prometheus"),
		gap("dep:prometheus", types.GapDependency, types.CriticalityMedium, types.Fillable, 0.9, []string{"prometheus"}),
		gap("missing:alerting", types.GapDependency, types.CriticalityLow, types.Fillable, 1.0, []string{"alerting"}),
		gap("surplus:legacy", types.GapConceptual, types.CriticalityUnknown, types.Fillable, 0.4, []string{"legacy"}),
	}
	// Shared substantive token for the semantic criterion.
	gaps[0].Description = "monitoring stack absent from current state"
	gaps[1].Description = "prometheus absent from current state"
	gaps[2].Description = "alerting rules absent from current state"
	gaps[3].Description = "legacy subsystem unaccounted for"

	g := Build(gaps)
	strategies := map[string]types.NavStrategy{
		"missing:monitoring": types.StrategyGapHopping,
		"dep:prometheus":     types.StrategyGapHopping,
		"missing:alerting":   types.StrategyGapHopping,
		"surplus:legacy":     types.StrategyGapHopping,
	}

	clusters := Clusterize(g, gaps, strategies)

	byCriterion := map[types.ClusterCriterion][]types.Cluster{}
	for _, c := range clusters {
		byCriterion[c.Criterion] = append(byCriterion[c.Criterion], c)
	}

	// Semantic: the three DEPENDENCY gaps share "absent"/"current"/"state".
	require.Len(t, byCriterion[types.ClusterSemantic], 1)
	assert.ElementsMatch(t,
		[]string{"missing:monitoring", "dep:prometheus", "missing:alerting"},
		byCriterion[types.ClusterSemantic][0].GapIDs)
	assert.Equal(t, types.GapDependency, byCriterion[types.ClusterSemantic][0].DominantType)

	// Structural: only the dependency-connected pair.
	require.Len(t, byCriterion[types.ClusterStructural], 1)
	assert.ElementsMatch(t,
		[]string{"missing:monitoring", "dep:prometheus"},
		byCriterion[types.ClusterStructural][0].GapIDs)

	// Strategic: everything shares GAP_HOPPING.
	require.Len(t, byCriterion[types.ClusterStrategic], 1)
	assert.Len(t, byCriterion[types.ClusterStrategic][0].GapIDs, 4)

	// The structural cluster id is written back to its members, and only
	// them.
	structuralID := byCriterion[types.ClusterStructural][0].ID
	assert.Equal(t, structuralID, gaps[0].ClusterID)
	assert.Equal(t, structuralID, gaps[1].ClusterID)
	assert.Empty(t, gaps[2].ClusterID)
	assert.Empty(t, gaps[3].ClusterID)
}

func TestClusterizeWithoutPlan(t *testing.T) {
	gaps := []types.Gap{
		gap("missing:a", types.GapDependency, types.CriticalityMedium, types.Fillable, 1.0, []string{"a"}),
	}
	clusters := Clusterize(Build(gaps), gaps, nil)
	for _, c := range clusters {
		assert.NotEqual(t, types.ClusterStrategic, c.Criterion)
	}
}
