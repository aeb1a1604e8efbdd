package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kvasey/chorus/internal/config"
	"github.com/kvasey/chorus/internal/usage"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show per-agent execution statistics",
	Long: `Show accumulated execution statistics from the local usage
database: how often each agent ran, how often it failed, total runtime,
and token counts where agents report them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		store, err := usage.OpenStore(cfg.Storage.UsageDB)
		if err != nil {
			return fmt.Errorf("open usage store: %w", err)
		}
		defer store.Close()

		summaries, err := store.Summarize()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No executions recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "AGENT\tRUNS\tFAILURES\tTOTAL TIME\tTOKENS IN\tTOKENS OUT")
		for _, s := range summaries {
			total := time.Duration(s.TotalDurationMs) * time.Millisecond
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%d\n",
				s.AgentName, s.Executions, s.Failures, total, s.TokensIn, s.TokensOut)
		}
		return w.Flush()
	},
}
