// Package storage persists mapping reports so runs can be compared over
// time. The engine never requires a store; the CLI and the facade's
// WithStore option wire one in.
package storage

import (
	"context"
	"time"

	"github.com/WADELABS/negative-space/internal/types"
)

// RunSummary is one stored run's headline row.
type RunSummary struct {
	ReportID    string
	CreatedAt   time.Time
	TotalGaps   int
	VoidDensity float64
	Blocking    int
}

// PatternCounts aggregates gap distributions across stored runs.
type PatternCounts struct {
	ByType        map[types.GapType]int
	ByCriticality map[types.Criticality]int
	Runs          int
}

// Storage is the report history store.
type Storage interface {
	// SaveReport persists a report. Saving the same report id twice
	// replaces the stored copy.
	SaveReport(ctx context.Context, report *types.VoidReport) error

	// GetReport loads a report by id. Returns an error when the id is
	// unknown.
	GetReport(ctx context.Context, id string) (*types.VoidReport, error)

	// ListRuns returns stored runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	// GetPatternCounts aggregates type and criticality distributions
	// across every stored run.
	GetPatternCounts(ctx context.Context) (*PatternCounts, error)

	// Close releases the underlying resources.
	Close() error
}
