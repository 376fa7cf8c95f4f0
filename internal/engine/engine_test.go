package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WADELABS/negative-space/internal/types"
)

func mustState(t *testing.T, raw map[string]any) types.State {
	t.Helper()
	s, err := types.StateFromAny("state", raw)
	require.NoError(t, err)
	return s
}

func TestMapInfrastructureScenario(t *testing.T) {
	a := mustState(t, map[string]any{"infra": "local", "security": "basic"})
	b := mustState(t, map[string]any{"infra": "k8s_prod", "security": "zero_trust"})

	report, err := New(nil).Map(context.Background(), a, b, nil)
	require.NoError(t, err)

	// Both keys changed: at least two concrete gaps.
	require.GreaterOrEqual(t, len(report.Gaps), 2)
	for _, g := range report.Gaps {
		assert.NoError(t, g.Validate())
	}

	changed := 0
	for _, g := range report.Gaps {
		switch g.Type {
		case types.GapDependency, types.GapCapability:
			changed++
		}
	}
	assert.GreaterOrEqual(t, changed, 2)

	assert.Greater(t, report.Summary.VoidDensity, 0.0)
	assert.GreaterOrEqual(t, report.Summary.Navigability, 0.0)
	assert.LessOrEqual(t, report.Summary.Navigability, 1.0)
	assert.Len(t, report.NavigationPlan.Steps, len(report.Gaps))

	// The report echoes its inputs.
	assert.True(t, report.Inputs.PointA.Equal(a))
	assert.True(t, report.Inputs.PointB.Equal(b))
}

func TestMapIdenticalStates(t *testing.T) {
	a := mustState(t, map[string]any{"infra": "local", "team": "small"})
	b := mustState(t, map[string]any{"infra": "local", "team": "small"})

	report, err := New(nil).Map(context.Background(), a, b, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Summary.TotalGaps)
	assert.Equal(t, 0.0, report.Summary.VoidDensity)
	assert.Equal(t, 1.0, report.Summary.Navigability)
	assert.Empty(t, report.NavigationPlan.Steps)
	assert.Empty(t, report.NavigationPlan.Unreachable)
}

func TestMapUnfillableConstraintScenario(t *testing.T) {
	a := mustState(t, map[string]any{"team": "two engineers"})
	b := mustState(t, map[string]any{
		"team":    "two engineers",
		"funding": "series A",
	})
	rawCtx := mustState(t, map[string]any{
		"constraints": map[string]any{
			"budget": map[string]any{
				"description": "no additional budget available",
				"requires":    "funding",
				"immutable":   true,
			},
		},
	})

	report, err := New(nil).Map(context.Background(), a, b, rawCtx)
	require.NoError(t, err)

	var constraintGap *types.Gap
	for i := range report.Gaps {
		if report.Gaps[i].ConstraintRef == "budget" {
			constraintGap = &report.Gaps[i]
			break
		}
	}
	require.NotNil(t, constraintGap, "constraint gap must be reported")

	assert.Equal(t, types.Unfillable, constraintGap.Fillability)
	assert.Equal(t, types.CriticalityBlocking, constraintGap.Criticality)

	named := false
	for _, u := range report.NavigationPlan.Unreachable {
		if u.GapID == constraintGap.ID {
			named = true
		}
	}
	assert.True(t, named, "unreachable section must name the unfillable blocking gap")
}

func TestMapDescriptionMarkedConstraintIsUnfillable(t *testing.T) {
	// Immutability declared in prose rather than as a map field still
	// makes the referencing gap unfillable.
	a := mustState(t, map[string]any{"team": "two engineers"})
	b := mustState(t, map[string]any{
		"team":    "two engineers",
		"funding": "series A",
	})
	rawCtx := mustState(t, map[string]any{
		"constraints": map[string]any{
			"budget": map[string]any{
				"description": "immutable: no additional budget available",
				"requires":    "funding",
			},
		},
	})

	report, err := New(nil).Map(context.Background(), a, b, rawCtx)
	require.NoError(t, err)

	var constraintGap *types.Gap
	for i := range report.Gaps {
		if report.Gaps[i].ConstraintRef == "budget" {
			constraintGap = &report.Gaps[i]
			break
		}
	}
	require.NotNil(t, constraintGap)
	assert.Equal(t, types.Unfillable, constraintGap.Fillability)
}

func TestMapIsIdempotent(t *testing.T) {
	a := mustState(t, map[string]any{"api": "none", "db": "sqlite"})
	b := mustState(t, map[string]any{"api": "public", "db": "postgres", "cache": "redis"})
	rawCtx := mustState(t, map[string]any{
		"dependencies": map[string]any{
			"redis":  "cache",
			"docker": "redis",
		},
	})

	e := New(nil)
	first, err := e.Map(context.Background(), a, b, rawCtx)
	require.NoError(t, err)
	second, err := e.Map(context.Background(), a, b, rawCtx)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Gaps, second.Gaps)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.NavigationPlan, second.NavigationPlan)
	assert.Equal(t, first.Clusters, second.Clusters)
}

func TestMapReportIDDependsOnInputs(t *testing.T) {
	a := mustState(t, map[string]any{"x": "1"})
	b := mustState(t, map[string]any{"x": "2"})
	c := mustState(t, map[string]any{"x": "3"})

	e := New(nil)
	r1, err := e.Map(context.Background(), a, b, nil)
	require.NoError(t, err)
	r2, err := e.Map(context.Background(), a, c, nil)
	require.NoError(t, err)

	assert.NotEqual(t, r1.ID, r2.ID)
}

func TestRunIDDistinguishesNestedValues(t *testing.T) {
	// Differences buried inside nested maps must change the id, or a
	// stored report would be overwritten by an unrelated run.
	a1 := mustState(t, map[string]any{"cfg": map[string]any{"replicas": 1}})
	a2 := mustState(t, map[string]any{"cfg": map[string]any{"replicas": 9}})
	b := mustState(t, map[string]any{"cfg": map[string]any{"replicas": 3}})

	assert.NotEqual(t, RunID(a1, b, nil, 0.8), RunID(a2, b, nil, 0.8))

	l1 := mustState(t, map[string]any{"tags": []any{"a"}})
	l2 := mustState(t, map[string]any{"tags": []any{"b"}})
	assert.NotEqual(t, RunID(l1, b, nil, 0.8), RunID(l2, b, nil, 0.8))

	// Identical nested inputs still share an id.
	a3 := mustState(t, map[string]any{"cfg": map[string]any{"replicas": 1}})
	assert.Equal(t, RunID(a1, b, nil, 0.8), RunID(a3, b, nil, 0.8))
}

func TestMapPatterns(t *testing.T) {
	a := mustState(t, map[string]any{})
	b := mustState(t, map[string]any{
		"api": "public",
		"db":  "postgres",
	})

	report, err := New(nil).Map(context.Background(), a, b, nil)
	require.NoError(t, err)

	p := report.Patterns
	total := 0
	for _, n := range p.TypeCounts {
		total += n
	}
	assert.Equal(t, len(report.Gaps), total)
	assert.GreaterOrEqual(t, p.FillabilityRate, 0.0)
	assert.LessOrEqual(t, p.FillabilityRate, 1.0)
	assert.NotEmpty(t, p.Recommendations)

	// The first recommendation points at the first planned step.
	require.NotEmpty(t, report.NavigationPlan.Steps)
	assert.Contains(t, p.Recommendations[0], report.NavigationPlan.Steps[0].GapID)
}

func TestCriticalFindingsOrdering(t *testing.T) {
	a := mustState(t, map[string]any{})
	b := mustState(t, map[string]any{"core": "up", "edge": "up"})
	rawCtx := mustState(t, map[string]any{
		"dependencies": map[string]any{
			"platform": "core",
		},
	})

	report, err := New(nil).Map(context.Background(), a, b, rawCtx)
	require.NoError(t, err)

	for i := 1; i < len(report.CriticalFindings); i++ {
		prev, cur := report.CriticalFindings[i-1], report.CriticalFindings[i]
		if prev.Criticality.PlanningRank() == cur.Criticality.PlanningRank() {
			assert.GreaterOrEqual(t, prev.Certainty, cur.Certainty)
		} else {
			assert.Greater(t, prev.Criticality.PlanningRank(), cur.Criticality.PlanningRank())
		}
	}
}
