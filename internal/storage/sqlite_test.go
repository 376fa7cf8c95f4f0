package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WADELABS/negative-space/internal/types"
)

func testStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "voidmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testReport(id string, gaps ...types.Gap) *types.VoidReport {
	blocking := 0
	for i := range gaps {
		if gaps[i].Criticality == types.CriticalityBlocking {
			blocking++
		}
	}
	return &types.VoidReport{
		ID:        id,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Gaps:      gaps,
		Summary: types.Summary{
			TotalGaps:     len(gaps),
			VoidDensity:   0.4,
			BlockingCount: blocking,
		},
	}
}

func testGap(id string, t types.GapType, c types.Criticality) types.Gap {
	return types.Gap{
		ID: id, Type: t, Criticality: c,
		Fillability: types.Fillable, Certainty: 0.9,
		Description:  id,
		DiscoveredBy: []string{"contrastive_analysis"},
	}
}

func TestSaveAndGetReport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	report := testReport("void-abc123",
		testGap("missing:api", types.GapDependency, types.CriticalityBlocking),
		testGap("missing:docs", types.GapInformation, types.CriticalityLow),
	)
	require.NoError(t, s.SaveReport(ctx, report))

	loaded, err := s.GetReport(ctx, "void-abc123")
	require.NoError(t, err)
	assert.Equal(t, report.ID, loaded.ID)
	assert.Equal(t, report.Gaps, loaded.Gaps)
	assert.Equal(t, report.Summary, loaded.Summary)
}

func TestGetReportUnknown(t *testing.T) {
	s := testStore(t)
	_, err := s.GetReport(context.Background(), "void-missing")
	assert.ErrorContains(t, err, "not found")
}

func TestSaveReportReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReport(ctx, testReport("void-1",
		testGap("missing:a", types.GapDependency, types.CriticalityMedium))))
	require.NoError(t, s.SaveReport(ctx, testReport("void-1",
		testGap("missing:a", types.GapDependency, types.CriticalityMedium),
		testGap("missing:b", types.GapInformation, types.CriticalityLow))))

	loaded, err := s.GetReport(ctx, "void-1")
	require.NoError(t, err)
	assert.Len(t, loaded.Gaps, 2)

	counts, err := s.GetPatternCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Runs)
	assert.Equal(t, 1, counts.ByType[types.GapDependency])
	assert.Equal(t, 1, counts.ByType[types.GapInformation])
}

func TestListRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := testReport("void-old", testGap("missing:a", types.GapDependency, types.CriticalityMedium))
	first.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	second := testReport("void-new", testGap("missing:b", types.GapInformation, types.CriticalityLow))

	require.NoError(t, s.SaveReport(ctx, first))
	require.NoError(t, s.SaveReport(ctx, second))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "void-new", runs[0].ReportID)
	assert.Equal(t, "void-old", runs[1].ReportID)
	assert.Equal(t, 1, runs[0].TotalGaps)
}

func TestGetPatternCountsAcrossRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReport(ctx, testReport("void-1",
		testGap("missing:a", types.GapDependency, types.CriticalityBlocking),
		testGap("missing:b", types.GapDependency, types.CriticalityMedium))))
	require.NoError(t, s.SaveReport(ctx, testReport("void-2",
		testGap("missing:c", types.GapDependency, types.CriticalityBlocking))))

	counts, err := s.GetPatternCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Runs)
	assert.Equal(t, 3, counts.ByType[types.GapDependency])
	assert.Equal(t, 2, counts.ByCriticality[types.CriticalityBlocking])
}
