package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kvasey/chorus/internal/orchestrator"
)

var runVerbose bool

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Run one query through the agent pipeline",
	Long: `Run a single query: analyze it, select agents, execute them
concurrently, and print the merged answer.

With --verbose, per-agent progress is printed as agents start and
finish. A degraded answer (partial agent coverage or a fallback merge)
is flagged on stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print per-agent progress")
}

func runQuery(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	eng, err := buildEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if runVerbose {
		go printEvents(eng)
	} else {
		go drainEvents(eng)
	}

	result, err := eng.Run(ctx, query, nil)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	fmt.Println(result.Output)

	if runVerbose {
		meta := fmt.Sprintf("agents: %s  took: %s",
			strings.Join(result.ContributingAgents, ", "),
			result.TotalDuration.Round(time.Millisecond))
		fmt.Fprintln(os.Stderr, meta)
	}
	if result.Degraded {
		color.New(color.FgYellow).Fprintln(os.Stderr, "warning: degraded answer (partial agent coverage)")
	}
	return nil
}

// printEvents streams run progress to stderr.
func printEvents(eng *engine) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	for ev := range eng.Events() {
		switch ev.Type {
		case orchestrator.EventAgentStarted:
			fmt.Fprintf(os.Stderr, "  … %s\n", ev.AgentName)
		case orchestrator.EventAgentCompleted:
			green.Fprintf(os.Stderr, "  ✓ %s (%s)\n", ev.AgentName, ev.Duration.Round(time.Millisecond))
		case orchestrator.EventAgentFailed:
			red.Fprintf(os.Stderr, "  ✗ %s (%s): %v\n", ev.AgentName, ev.Duration.Round(time.Millisecond), ev.Error)
		}
	}
}

// drainEvents keeps the event channel from filling when nobody reads it.
func drainEvents(eng *engine) {
	for range eng.Events() {
	}
}
