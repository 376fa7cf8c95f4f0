package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/WADELABS/negative-space/internal/types"
)

// renderReport prints the report: JSON for machines, a colored summary for
// humans.
func renderReport(report *types.VoidReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n", cyan("=== Void Map "+report.ID+" ==="))
	fmt.Printf("\n%s\n", yellow("Summary:"))
	fmt.Printf("  Gaps:          %d (%d blocking, %d fillable)\n",
		report.Summary.TotalGaps, report.Summary.BlockingCount, report.Summary.FillableCount)
	fmt.Printf("  Void density:  %s\n", renderDensity(report.Density))
	fmt.Printf("  Navigability:  %.2f\n", report.Summary.Navigability)
	fmt.Printf("  Connectivity:  %.2f\n", report.Summary.Connectivity)

	if len(report.CriticalFindings) > 0 {
		fmt.Printf("\n%s\n", yellow("Critical findings:"))
		for _, g := range report.CriticalFindings {
			marker := red("●")
			if g.Criticality != types.CriticalityBlocking {
				marker = yellow("●")
			}
			fmt.Printf("  %s %s [%s, certainty %.2f] %s\n",
				marker, g.ID, g.Criticality, g.Certainty, gray(g.Description))
		}
	}

	if len(report.NavigationPlan.Steps) > 0 {
		fmt.Printf("\n%s\n", yellow("Navigation plan:"))
		for i, step := range report.NavigationPlan.Steps {
			fmt.Printf("  %2d. %s %s\n", i+1, step.GapID, gray("("+string(step.Strategy)+")"))
		}
	}

	if len(report.NavigationPlan.Unreachable) > 0 {
		fmt.Printf("\n%s\n", red("Unreachable:"))
		for _, u := range report.NavigationPlan.Unreachable {
			fmt.Printf("  %s %s %s\n", red("✗"), u.GapID, gray(u.Reason))
		}
	}

	if len(report.Patterns.Insights) > 0 {
		fmt.Printf("\n%s\n", yellow("Insights:"))
		for _, s := range report.Patterns.Insights {
			fmt.Printf("  - %s\n", s)
		}
	}
	if len(report.Patterns.Recommendations) > 0 {
		fmt.Printf("\n%s\n", green("Recommendations:"))
		for _, s := range report.Patterns.Recommendations {
			fmt.Printf("  - %s\n", s)
		}
	}

	if len(report.Degradations) > 0 {
		fmt.Printf("\n%s\n", gray("Degradations:"))
		for _, d := range report.Degradations {
			fmt.Printf("  %s\n", gray(d))
		}
	}

	fmt.Println()
	return nil
}

func renderDensity(d types.DensityEstimate) string {
	if !d.MonteCarlo {
		return fmt.Sprintf("%.2f", d.Value)
	}
	s := fmt.Sprintf("%.2f (95%% CI %.2f-%.2f, %d samples)", d.Value, d.Low, d.High, d.Samples)
	if d.ReducedConfidence {
		s += " [reduced confidence]"
	}
	return s
}
