package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WADELABS/negative-space/internal/types"
)

// failingStrategy always errors; the orchestrator must degrade it to an
// INFORMATION candidate rather than aborting the run.
type failingStrategy struct{}

func (s *failingStrategy) Name() string       { return "exploding" }
func (s *failingStrategy) Philosophy() string { return "fails fast" }
func (s *failingStrategy) Discover(ctx context.Context, in Input) (*Result, error) {
	return nil, errors.New("synthetic failure")
}

// slowStrategy blocks until its context is cancelled.
type slowStrategy struct{}

func (s *slowStrategy) Name() string       { return "glacial" }
func (s *slowStrategy) Philosophy() string { return "takes its time" }
func (s *slowStrategy) Discover(ctx context.Context, in Input) (*Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestOrchestratorDeterministicOrdering(t *testing.T) {
	in := input(t,
		map[string]any{"infra": "local"},
		map[string]any{"infra": "k8s_prod", "monitoring": "prometheus"},
		map[string]any{
			"dependencies": map[string]any{"helm": "monitoring"},
		},
	)

	orch := NewOrchestrator(NewDefaultRegistry(), DefaultConfig())

	first, err := orch.Discover(context.Background(), in)
	require.NoError(t, err)
	second, err := orch.Discover(context.Background(), in)
	require.NoError(t, err)

	// Discovery is a pure function of its inputs: identical candidates in
	// identical order across runs.
	require.Equal(t, len(first.Candidates), len(second.Candidates))
	for i := range first.Candidates {
		assert.Equal(t, first.Candidates[i].ID, second.Candidates[i].ID)
		assert.Equal(t, first.Candidates[i].Type, second.Candidates[i].Type)
		assert.Equal(t, first.Candidates[i].Certainty, second.Candidates[i].Certainty)
	}
}

func TestOrchestratorDegradesFailures(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&ContrastiveAnalysis{}))
	require.NoError(t, registry.Register(&failingStrategy{}))

	cfg := DefaultConfig()
	cfg.Strategies = []string{StrategyContrastive, "exploding"}
	orch := NewOrchestrator(registry, cfg)

	in := input(t, map[string]any{}, map[string]any{"infra": "k8s"}, nil)
	result, err := orch.Discover(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, result.Degradations, 1)
	assert.Contains(t, result.Degradations[0], "exploding")

	fail := candidateByID(result.Candidates, "failure:exploding:strategy")
	require.NotNil(t, fail)
	assert.Equal(t, types.GapInformation, fail.Type)
	assert.InDelta(t, 0.2, fail.Certainty, 1e-9)

	// The healthy strategy's candidates still arrive.
	assert.NotNil(t, candidateByID(result.Candidates, "missing:infra"))
}

func TestOrchestratorTimeoutDoesNotAbortRun(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&slowStrategy{}))
	require.NoError(t, registry.Register(&ContrastiveAnalysis{}))

	cfg := DefaultConfig()
	cfg.Strategies = []string{"glacial", StrategyContrastive}
	cfg.StrategyTimeout = 10 * time.Millisecond
	orch := NewOrchestrator(registry, cfg)

	in := input(t, map[string]any{}, map[string]any{"infra": "k8s"}, nil)
	result, err := orch.Discover(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, result.Degradations, 1)
	assert.Contains(t, result.Degradations[0], "glacial")
	assert.NotNil(t, candidateByID(result.Candidates, "failure:glacial:strategy"))
	assert.NotNil(t, candidateByID(result.Candidates, "missing:infra"))
}

func TestOrchestratorRigorGating(t *testing.T) {
	// Low rigor raises the acceptance threshold and drops speculative
	// candidates (the surplus/conceptual ones at certainty 0.4), but
	// failure records always pass through.
	registry := NewDefaultRegistry()
	cfg := DefaultConfig()
	cfg.Rigor = 0.8

	in := input(t,
		map[string]any{"legacy": "cobol"},
		map[string]any{"infra": "k8s"},
		nil,
	)
	in.Rigor = 0.8

	orch := NewOrchestrator(registry, cfg)
	result, err := orch.Discover(context.Background(), in)
	require.NoError(t, err)
	assert.NotNil(t, candidateByID(result.Candidates, "surplus:legacy"))

	in.Rigor = 0.5
	result, err = orch.Discover(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, candidateByID(result.Candidates, "surplus:legacy"))
	assert.NotNil(t, candidateByID(result.Candidates, "missing:infra"))

	// Extreme rigor never filters direct A/B differences: non-identical
	// states always surface at least their diff gaps.
	in.Rigor = 0.05
	result, err = orch.Discover(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, candidateByID(result.Candidates, "surplus:legacy"))
	assert.NotNil(t, candidateByID(result.Candidates, "missing:infra"))
}

func TestRegistryResolvePreservesRegistrationOrder(t *testing.T) {
	r := NewDefaultRegistry()
	strategies, err := r.Resolve([]string{StrategyBoundary, StrategyContrastive})
	require.NoError(t, err)
	require.Len(t, strategies, 2)
	assert.Equal(t, StrategyContrastive, strategies[0].Name())
	assert.Equal(t, StrategyBoundary, strategies[1].Name())

	_, err = r.Resolve([]string{"nope"})
	assert.ErrorContains(t, err, "unknown strategy")
}
