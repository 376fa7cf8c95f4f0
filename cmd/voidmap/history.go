package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/WADELABS/negative-space/internal/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored mapping runs and aggregate gap patterns",
	Run: func(cmd *cobra.Command, args []string) {
		if dbPath == "" {
			fmt.Fprintln(os.Stderr, "Error: --db is required for history")
			os.Exit(1)
		}
		store, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		ctx := context.Background()
		runs, err := store.ListRuns(ctx, historyLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Mapping History ==="))
		if len(runs) == 0 {
			fmt.Printf("  %s\n", gray("No stored runs"))
			return
		}

		for _, run := range runs {
			blocking := ""
			if run.Blocking > 0 {
				blocking = red(fmt.Sprintf("  %d blocking", run.Blocking))
			}
			fmt.Printf("  %s  %s  %3d gaps  density %.2f%s\n",
				run.ReportID,
				gray(run.CreatedAt.Format("2006-01-02 15:04")),
				run.TotalGaps,
				run.VoidDensity,
				blocking)
		}

		counts, err := store.GetPatternCounts(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n%s\n", cyan("Gap types across all runs:"))
		for _, line := range countLines(counts.ByType) {
			fmt.Printf("  %s\n", line)
		}
		fmt.Printf("\n%s\n", cyan("Criticality across all runs:"))
		for _, line := range criticalityLines(counts.ByCriticality) {
			fmt.Printf("  %s\n", line)
		}
	},
}

func countLines(counts map[types.GapType]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-12s %d", k, counts[types.GapType(k)]))
	}
	return lines
}

func criticalityLines(counts map[types.Criticality]int) []string {
	order := []types.Criticality{
		types.CriticalityBlocking,
		types.CriticalityHigh,
		types.CriticalityMedium,
		types.CriticalityLow,
		types.CriticalityUnknown,
	}
	var lines []string
	for _, c := range order {
		if n, ok := counts[c]; ok {
			lines = append(lines, fmt.Sprintf("%-12s %d", c, n))
		}
	}
	return lines
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	rootCmd.AddCommand(historyCmd)
}
