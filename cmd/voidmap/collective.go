package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WADELABS/negative-space/voidmap"
)

var observerRigors string

var collectiveCmd = &cobra.Command{
	Use:   "collective",
	Short: "Map the void under several observers and arbitrate their findings",
	Long: `Run one mapping pipeline per observer rigor concurrently and merge the
results conservatively: a gap any observer rated blocking is never
dropped, and disputed criticalities resolve to the more severe level.`,
	Run: func(cmd *cobra.Command, args []string) {
		rigors, err := parseRigors(observerRigors)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		pointA, pointB, runContext, err := loadInputs()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var opts []voidmap.Option
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
		report, err := voidmap.MapVoidsCollective(ctx, pointA, pointB, runContext, rigors, opts...)
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

// parseRigors parses a comma-separated rigor list like "0.9,0.8,0.6".
func parseRigors(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	rigors := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		r, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rigor %q: %w", p, err)
		}
		if r <= 0 || r > 1 {
			return nil, fmt.Errorf("rigor must be in (0,1], got %v", r)
		}
		rigors = append(rigors, r)
	}
	if len(rigors) == 0 {
		return nil, fmt.Errorf("at least one observer rigor is required")
	}
	return rigors, nil
}

func init() {
	collectiveCmd.Flags().StringVar(&currentPath, "current", "", "Path to the current state file (required)")
	collectiveCmd.Flags().StringVar(&goalPath, "goal", "", "Path to the goal state file (required)")
	collectiveCmd.Flags().StringVar(&contextPath, "context", "", "Path to the context file")
	collectiveCmd.Flags().StringVar(&observerRigors, "observers", "0.9,0.7,0.5", "Comma-separated observer rigors")
	collectiveCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	collectiveCmd.MarkFlagRequired("current")
	collectiveCmd.MarkFlagRequired("goal")
	rootCmd.AddCommand(collectiveCmd)
}
