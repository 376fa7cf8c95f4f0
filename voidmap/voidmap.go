// Package voidmap is the public entry point for mapping the void between
// two states: the structured space of everything missing between where a
// system is and where it needs to be.
//
// A mapping run takes a current state (Point A), a target state (Point B),
// and an optional context of declared dependencies, constraints, and
// limits. It returns a report of characterized gaps, topology metrics over
// them, and an ordered navigation plan.
//
//	report, err := voidmap.MapVoids(ctx, currentState, targetState, runContext)
//
// Inputs are plain decoded JSON/YAML mappings. The only fatal input error
// is a state that is not a mapping; everything else degrades into report
// data.
package voidmap

import (
	"context"
	"fmt"
	"time"

	"github.com/WADELABS/negative-space/internal/collective"
	"github.com/WADELABS/negative-space/internal/discovery"
	"github.com/WADELABS/negative-space/internal/engine"
	"github.com/WADELABS/negative-space/internal/storage"
	"github.com/WADELABS/negative-space/internal/types"
)

// Option configures a mapping run.
type Option func(*options)

type options struct {
	config *discovery.Config
	store  storage.Storage
}

// WithConfig overrides the default discovery configuration.
func WithConfig(cfg *discovery.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithRigor overrides the rigor of the default configuration.
func WithRigor(rigor float64) Option {
	return func(o *options) {
		if o.config == nil {
			o.config = discovery.DefaultConfig()
		}
		o.config.Rigor = rigor
	}
}

// WithEstimateDeadline bounds the density estimation when the Monte Carlo
// fallback runs.
func WithEstimateDeadline(d time.Duration) Option {
	return func(o *options) {
		if o.config == nil {
			o.config = discovery.DefaultConfig()
		}
		o.config.EstimateDeadline = d
	}
}

// WithStore persists the resulting report before returning it.
func WithStore(s storage.Storage) Option {
	return func(o *options) { o.store = s }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.config == nil {
		o.config = discovery.DefaultConfig()
	}
	return o
}

// MapVoids maps the void between pointA and pointB under a single
// observer. The inputs are decoded JSON/YAML values; non-mapping states
// fail with *types.InvalidStateError.
func MapVoids(ctx context.Context, pointA, pointB, runContext any, opts ...Option) (*types.VoidReport, error) {
	o := buildOptions(opts)

	a, b, raw, err := decodeInputs(pointA, pointB, runContext)
	if err != nil {
		return nil, err
	}

	report, err := engine.New(o.config).Map(ctx, a, b, raw)
	if err != nil {
		return nil, err
	}
	return persist(ctx, o, report)
}

// MapVoidsCollective maps the void under one observer per rigor value and
// returns the arbitrated consensus report.
func MapVoidsCollective(ctx context.Context, pointA, pointB, runContext any, rigors []float64, opts ...Option) (*types.VoidReport, error) {
	o := buildOptions(opts)

	a, b, raw, err := decodeInputs(pointA, pointB, runContext)
	if err != nil {
		return nil, err
	}

	report, err := collective.New(o.config, rigors).Map(ctx, a, b, raw)
	if err != nil {
		return nil, err
	}
	return persist(ctx, o, report)
}

func decodeInputs(pointA, pointB, runContext any) (a, b, raw types.State, err error) {
	if a, err = types.StateFromAny("point_a", pointA); err != nil {
		return nil, nil, nil, err
	}
	if b, err = types.StateFromAny("point_b", pointB); err != nil {
		return nil, nil, nil, err
	}
	if runContext != nil {
		if raw, err = types.StateFromAny("context", runContext); err != nil {
			return nil, nil, nil, err
		}
	}
	return a, b, raw, nil
}

func persist(ctx context.Context, o *options, report *types.VoidReport) (*types.VoidReport, error) {
	if o.store != nil {
		if err := o.store.SaveReport(ctx, report); err != nil {
			return nil, fmt.Errorf("saving report: %w", err)
		}
	}
	return report, nil
}
