package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/WADELABS/negative-space/internal/discovery"
	"github.com/WADELABS/negative-space/internal/storage"
	"github.com/WADELABS/negative-space/voidmap"
)

var (
	mapRigor   float64
	mapPreset  string
	mapTimeout time.Duration
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map the void between two states under a single observer",
	Long: `Run the full mapping pipeline once: discover gaps between the current
and goal states, classify them, compute the void topology, and produce a
navigation plan.`,
	Run: func(cmd *cobra.Command, args []string) {
		pointA, pointB, runContext, err := loadInputs()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cfg, err := buildConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		opts := []voidmap.Option{voidmap.WithConfig(cfg)}
		store, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if store != nil {
			defer store.Close()
			opts = append(opts, voidmap.WithStore(store))
		}

		ctx := context.Background()
		report, err := voidmap.MapVoids(ctx, pointA, pointB, runContext, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := renderReport(report, jsonOutput); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// buildConfig resolves the preset, rigor, and timeout flags into a
// discovery configuration.
func buildConfig() (*discovery.Config, error) {
	cfg := discovery.DefaultConfig()
	if mapPreset != "" {
		preset := discovery.Preset(mapPreset)
		switch preset {
		case discovery.PresetQuick, discovery.PresetStandard, discovery.PresetThorough:
			cfg = discovery.PresetConfig(preset)
		default:
			return nil, fmt.Errorf("unknown preset %q (want quick, standard, or thorough)", mapPreset)
		}
	}
	if mapRigor <= 0 || mapRigor > 1 {
		return nil, fmt.Errorf("rigor must be in (0,1], got %v", mapRigor)
	}
	cfg.Rigor = mapRigor
	if mapTimeout > 0 {
		cfg.StrategyTimeout = mapTimeout
	}
	return cfg, nil
}

// openStore opens the history database when --db is set.
func openStore() (storage.Storage, error) {
	if dbPath == "" {
		return nil, nil
	}
	return storage.NewSQLite(dbPath)
}

func init() {
	mapCmd.Flags().StringVar(&currentPath, "current", "", "Path to the current state file (required)")
	mapCmd.Flags().StringVar(&goalPath, "goal", "", "Path to the goal state file (required)")
	mapCmd.Flags().StringVar(&contextPath, "context", "", "Path to the context file")
	mapCmd.Flags().Float64Var(&mapRigor, "rigor", 0.8, "Observer rigor in (0,1]; higher surfaces more speculative gaps")
	mapCmd.Flags().StringVar(&mapPreset, "preset", "", "Discovery preset: quick, standard, or thorough")
	mapCmd.Flags().DurationVar(&mapTimeout, "timeout", 0, "Per-strategy timeout (default 10s)")
	mapCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	mapCmd.MarkFlagRequired("current")
	mapCmd.MarkFlagRequired("goal")
	rootCmd.AddCommand(mapCmd)
}
