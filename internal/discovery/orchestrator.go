package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/WADELABS/negative-space/internal/types"
)

// Orchestrator coordinates the discovery process:
//   - Resolves strategies from configuration
//   - Fans them out concurrently (they share no mutable state)
//   - Joins before returning the combined candidate list
//   - Degrades per-strategy failures and timeouts into INFORMATION gaps
type Orchestrator struct {
	registry *Registry
	config   *Config
}

// NewOrchestrator creates a discovery orchestrator.
func NewOrchestrator(registry *Registry, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Orchestrator{registry: registry, config: config}
}

// Discovery holds the joined output of one discovery run.
type Discovery struct {
	Candidates []types.CandidateGap

	// Degradations records strategies that failed or timed out. Each
	// entry has a matching INFORMATION candidate in Candidates.
	Degradations []string

	Duration time.Duration
}

// strategySlot holds one strategy's output at its registration index so
// the joined candidate order is independent of goroutine scheduling.
type strategySlot struct {
	name       string
	candidates []types.CandidateGap
	failure    string
}

// Discover runs every configured strategy over the input triple and joins
// their candidates. The input is read-only; no strategy failure aborts the
// run.
func (o *Orchestrator) Discover(ctx context.Context, in Input) (*Discovery, error) {
	start := time.Now()

	strategies, err := o.resolveStrategies()
	if err != nil {
		return nil, fmt.Errorf("resolving strategies: %w", err)
	}

	slots := make([]strategySlot, len(strategies))
	g, gctx := errgroup.WithContext(ctx)

	for i, s := range strategies {
		g.Go(func() error {
			slots[i] = o.runStrategy(gctx, s, in)
			return nil
		})
	}
	// Workers only record into their own slot; the group never errors.
	_ = g.Wait()

	out := &Discovery{Duration: time.Since(start)}
	threshold := in.AcceptanceThreshold()

	for _, slot := range slots {
		if slot.failure != "" {
			out.Degradations = append(out.Degradations, slot.failure)
		}
		for _, c := range slot.candidates {
			// Rigor gates ordinary candidates. Failure records are
			// bookkeeping and always pass through.
			if c.Certainty < threshold && !strings.HasPrefix(c.ID, idFailure) {
				continue
			}
			out.Candidates = append(out.Candidates, c)
		}
	}

	slog.Debug("discovery complete",
		"strategies", len(strategies),
		"candidates", len(out.Candidates),
		"degradations", len(out.Degradations),
		"duration", out.Duration)

	return out, nil
}

// resolveStrategies resolves the strategies to run based on configuration.
func (o *Orchestrator) resolveStrategies() ([]Strategy, error) {
	names := o.config.Strategies
	if len(names) == 0 {
		names = PresetConfig(PresetThorough).Strategies
	}
	return o.registry.Resolve(names)
}

// runStrategy executes a single strategy under the per-strategy timeout,
// converting errors and timeouts into a failure record plus candidate.
func (o *Orchestrator) runStrategy(ctx context.Context, s Strategy, in Input) strategySlot {
	slot := strategySlot{name: s.Name()}

	runCtx := ctx
	if o.config.StrategyTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.config.StrategyTimeout)
		defer cancel()
	}

	result, err := s.Discover(runCtx, in)
	if err != nil {
		reason := err.Error()
		if runCtx.Err() != nil {
			reason = "timed out after " + o.config.StrategyTimeout.String()
		}
		slog.Warn("discovery strategy degraded", "strategy", s.Name(), "reason", reason)
		slot.failure = fmt.Sprintf("strategy %s: %s", s.Name(), reason)
		slot.candidates = []types.CandidateGap{
			failureCandidate(s.Name(), "strategy", reason),
		}
		return slot
	}

	slot.candidates = result.Candidates
	return slot
}
