package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chorus",
	Short: "Multi-agent query orchestration engine",
	Long: `Chorus analyzes a query, selects the specialized agents that can
answer it, runs them concurrently with per-agent timeouts, and merges
their answers into one response.

With a query argument, runs it once and prints the merged answer. With
no arguments, launches interactive mode: type queries and watch agents
execute live.

Core capabilities:
- Classifies query intent and complexity
- Picks agents via the model, with a deterministic rule fallback
- Runs agents in parallel under a concurrency ceiling
- Isolates agent timeouts, errors, and panics from the run
- Merges partial answers when some agents fail`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return runQuery(cmd, args)
		}
		return runInteractive()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
