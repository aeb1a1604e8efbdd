// Package orchestrator routes a query to capability agents, executes
// them under concurrency and time constraints, and merges their outputs.
package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors surfaced across the orchestrator's public boundary.
var (
	// ErrOracleUnavailable indicates a transport or timeout failure on a
	// completion call. Stages with a deterministic fallback recover from
	// it locally; it only reaches the caller when no fallback exists.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrNoAgentAvailable indicates that neither the oracle strategy nor
	// the rule fallback selected any agent. Never retried.
	ErrNoAgentAvailable = errors.New("no agent available for query")

	// ErrAllAgentsFailed indicates every selected agent errored or timed
	// out. The wrapping AgentErrors carries per-agent diagnostics.
	ErrAllAgentsFailed = errors.New("all agents failed")
)

// AgentErrors aggregates per-agent failures for diagnostics.
// It wraps ErrAllAgentsFailed so callers can match with errors.Is.
type AgentErrors struct {
	// Agents maps agent names to the error each produced.
	Agents map[string]error
}

// Error implements the error interface. Agents are listed in name
// order so the message is stable across runs.
func (e *AgentErrors) Error() string {
	names := make([]string, 0, len(e.Agents))
	for name := range e.Agents {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Agents[name]))
	}
	return fmt.Sprintf("%v (%s)", ErrAllAgentsFailed, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrAllAgentsFailed.
func (e *AgentErrors) Unwrap() error {
	return ErrAllAgentsFailed
}
