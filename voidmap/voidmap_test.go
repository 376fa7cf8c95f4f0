package voidmap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WADELABS/negative-space/internal/storage"
	"github.com/WADELABS/negative-space/internal/types"
)

func TestMapVoids(t *testing.T) {
	report, err := MapVoids(context.Background(),
		map[string]any{"infra": "local", "security": "basic"},
		map[string]any{"infra": "k8s_prod", "security": "zero_trust"},
		nil)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(report.Gaps), 2)
	assert.Greater(t, report.Summary.VoidDensity, 0.0)
	assert.NotEmpty(t, report.ID)
}

func TestMapVoidsRejectsNonMapping(t *testing.T) {
	_, err := MapVoids(context.Background(),
		"not a mapping",
		map[string]any{"x": "1"},
		nil)
	require.Error(t, err)
	assert.True(t, types.IsInvalidState(err))

	_, err = MapVoids(context.Background(),
		map[string]any{"x": "1"},
		[]any{"also", "not", "a", "mapping"},
		nil)
	require.Error(t, err)
	assert.True(t, types.IsInvalidState(err))
}

func TestMapVoidsWellTypedContentNeverFails(t *testing.T) {
	report, err := MapVoids(context.Background(),
		map[string]any{"nested": map[string]any{"a": 1, "b": []any{true, "x"}}},
		map[string]any{"nested": map[string]any{"a": 2}, "extra": 3.5},
		map[string]any{"constraints": map[string]any{"c": "free-standing"}})
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestMapVoidsWithRigor(t *testing.T) {
	a := map[string]any{"docs": "none"}
	b := map[string]any{"docs": "complete", "audit": "passed"}

	// Low rigor admits only high-certainty candidates.
	strict, err := MapVoids(context.Background(), a, b, nil, WithRigor(0.05))
	require.NoError(t, err)
	loose, err := MapVoids(context.Background(), a, b, nil, WithRigor(0.95))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(loose.Gaps), len(strict.Gaps))
}

func TestMapVoidsWithStore(t *testing.T) {
	store, err := storage.NewSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	report, err := MapVoids(context.Background(),
		map[string]any{"db": "none"},
		map[string]any{"db": "postgres"},
		nil,
		WithStore(store))
	require.NoError(t, err)

	loaded, err := store.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Gaps, loaded.Gaps)
}

func TestMapVoidsCollective(t *testing.T) {
	report, err := MapVoidsCollective(context.Background(),
		map[string]any{"team": "two"},
		map[string]any{"team": "ten", "office": "berlin"},
		nil,
		[]float64{0.9, 0.7, 0.5})
	require.NoError(t, err)

	assert.NotEmpty(t, report.Gaps)
	for _, g := range report.Gaps {
		assert.NoError(t, g.Validate())
	}
}
