// Package collective runs the mapping pipeline under several observers at
// once and arbitrates their findings into one reconciled report. Observers
// differ only in rigor: a high-rigor observer surfaces more, less-certain
// gaps. Arbitration is conservative: a gap any observer considered
// blocking is never dropped, and disputed criticalities resolve to the
// more severe level.
package collective

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/WADELABS/negative-space/internal/discovery"
	"github.com/WADELABS/negative-space/internal/engine"
	"github.com/WADELABS/negative-space/internal/types"
)

// Observer is one independent mapping perspective.
type Observer struct {
	ID    string
	Name  string
	Rigor float64
}

// NewObserver creates an observer with a fresh identity. An empty name is
// derived from the id.
func NewObserver(name string, rigor float64) Observer {
	id := uuid.New().String()
	if name == "" {
		name = "observer-" + id[:8]
	}
	return Observer{ID: id, Name: name, Rigor: rigor}
}

// Collective is a set of observers sharing one base configuration.
type Collective struct {
	config    *discovery.Config
	observers []Observer
}

// New creates a collective. A nil config uses defaults; rigors configure
// one observer each.
func New(config *discovery.Config, rigors []float64) *Collective {
	if config == nil {
		config = discovery.DefaultConfig()
	}
	observers := make([]Observer, 0, len(rigors))
	for i, r := range rigors {
		observers = append(observers, NewObserver(fmt.Sprintf("observer-%d", i+1), r))
	}
	return &Collective{config: config, observers: observers}
}

// Observers returns the collective's observers.
func (c *Collective) Observers() []Observer { return c.observers }

// Map runs every observer's pipeline concurrently over the shared
// read-only inputs and arbitrates the results into one report. Topology
// and plan are recomputed over the merged gap set.
func (c *Collective) Map(ctx context.Context, pointA, pointB, rawContext types.State) (*types.VoidReport, error) {
	if len(c.observers) == 0 {
		return nil, fmt.Errorf("collective has no observers")
	}

	start := time.Now()
	reports := make([]*types.VoidReport, len(c.observers))

	g, gctx := errgroup.WithContext(ctx)
	for i, obs := range c.observers {
		g.Go(func() error {
			cfg := *c.config
			cfg.Rigor = obs.Rigor
			report, err := engine.New(&cfg).Map(gctx, pointA, pointB, rawContext)
			if err != nil {
				return fmt.Errorf("observer %s: %w", obs.Name, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gaps, degradations := c.arbitrate(reports)

	rigors := make([]float64, len(c.observers))
	for i, obs := range c.observers {
		rigors[i] = obs.Rigor
	}
	id := engine.RunID(pointA, pointB, rawContext, rigors...)

	cctx := types.ParseContext(rawContext)
	in := engine.Inputs{PointA: pointA, PointB: pointB, RawContext: rawContext}
	report := engine.Assemble(ctx, id, gaps, in, cctx, c.config.EstimateDeadline, degradations)

	slog.Info("collective mapping complete",
		"report", report.ID,
		"observers", len(c.observers),
		"gaps", len(gaps),
		"duration", time.Since(start))

	return report, nil
}
