package discovery

import (
	"context"
	"time"

	"github.com/WADELABS/negative-space/internal/types"
)

// Strategy defines the interface for gap discovery strategies. Each
// strategy embodies a specific way of probing the space between the
// current state and the target state.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	// Example: "contrastive_analysis", "dependency_walk"
	Name() string

	// Philosophy returns the guiding principle for this strategy.
	// Example: "What B declares and A lacks is the void's outline"
	Philosophy() string

	// Discover examines the input triple and returns candidate gaps.
	// Strategies must be deterministic given identical inputs and must
	// not mutate the input.
	Discover(ctx context.Context, in Input) (*Result, error)
}

// Input is the read-only triple one strategy examines, plus the observer's
// rigor setting. It must not be mutated during a run.
type Input struct {
	PointA  types.State
	PointB  types.State
	Context types.Context

	// Rigor in (0,1] scales discovery sensitivity: higher rigor lowers
	// the certainty threshold for accepting a candidate, surfacing more
	// but less-certain gaps.
	Rigor float64
}

// maxAcceptanceThreshold caps the rigor gate at direct-observation
// certainty: a plain A/B difference (certainty 0.9) survives any rigor.
const maxAcceptanceThreshold = 0.9

// AcceptanceThreshold is the minimum candidate certainty this input's
// rigor admits.
func (in Input) AcceptanceThreshold() float64 {
	t := 1.0 - in.Rigor
	if t > maxAcceptanceThreshold {
		return maxAcceptanceThreshold
	}
	return t
}

// Result contains the candidates one strategy produced, with context for
// audit.
type Result struct {
	Candidates []types.CandidateGap

	// Examined counts the keys/declarations the strategy evaluated.
	Examined int

	// Skipped counts keys the strategy could not evaluate (each one also
	// yields a low-certainty INFORMATION candidate).
	Skipped int
}

// Config defines the discovery engine configuration.
type Config struct {
	// Preset to use (quick/standard/thorough/custom).
	Preset Preset

	// Rigor in (0,1] for this observer. See Input.Rigor.
	Rigor float64

	// Strategies to run, by name. If empty, uses preset defaults.
	Strategies []string

	// StrategyTimeout bounds each individual strategy. A timed-out
	// strategy degrades to an empty result plus an INFORMATION gap; it
	// never aborts the overall mapping.
	StrategyTimeout time.Duration

	// EstimateDeadline bounds the Monte Carlo density estimation, when
	// the topology layer needs it.
	EstimateDeadline time.Duration
}

// Preset defines a predefined discovery configuration.
type Preset string

const (
	// PresetQuick runs the two cheap structural strategies only.
	PresetQuick Preset = "quick"

	// PresetStandard runs everything except counterfactual exploration.
	PresetStandard Preset = "standard"

	// PresetThorough runs all five strategies.
	PresetThorough Preset = "thorough"

	// PresetCustom uses caller-provided strategy lists.
	PresetCustom Preset = "custom"
)

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() *Config {
	return &Config{
		Preset:           PresetThorough,
		Rigor:            0.8,
		StrategyTimeout:  10 * time.Second,
		EstimateDeadline: 2 * time.Second,
	}
}

// PresetConfig returns the configuration for a given preset.
func PresetConfig(preset Preset) *Config {
	cfg := DefaultConfig()
	cfg.Preset = preset

	switch preset {
	case PresetQuick:
		cfg.StrategyTimeout = 2 * time.Second
		cfg.Strategies = []string{
			StrategyContrastive,
			StrategyDependencyWalk,
		}
	case PresetStandard:
		cfg.Strategies = []string{
			StrategyContrastive,
			StrategyDependencyWalk,
			StrategyConstraint,
			StrategyBoundary,
		}
	case PresetThorough:
		cfg.Strategies = []string{
			StrategyContrastive,
			StrategyDependencyWalk,
			StrategyConstraint,
			StrategyCounterfactual,
			StrategyBoundary,
		}
	}

	return cfg
}

// Built-in strategy names.
const (
	StrategyContrastive    = "contrastive_analysis"
	StrategyDependencyWalk = "dependency_walk"
	StrategyConstraint     = "constraint_propagation"
	StrategyCounterfactual = "counterfactual_exploration"
	StrategyBoundary       = "boundary_probing"
)
