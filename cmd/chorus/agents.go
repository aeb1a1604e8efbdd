package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the registered agents",
	Long: `List the agents the orchestrator can select from, in fallback
priority order. The set is controlled by agents.yaml next to the user
config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		bold := color.New(color.Bold)
		for _, entry := range eng.Agents().Entries() {
			bold.Printf("%s", entry.Agent.Name())
			fmt.Printf("  (priority %d)\n", entry.Priority)
			fmt.Printf("    %s\n", entry.Agent.Description())
		}
		return nil
	},
}
