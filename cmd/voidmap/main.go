package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags shared by the mapping commands.
	currentPath string
	goalPath    string
	contextPath string
	dbPath      string
	jsonOutput  bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "voidmap",
	Short: "Map the void between a current state and a target state",
	Long: `voidmap charts negative space: the structured set of gaps between
where a system is (Point A) and where it needs to be (Point B).

States are JSON or YAML mappings. An optional context file declares
dependencies, constraints, and limits that sharpen discovery.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the report history database")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
