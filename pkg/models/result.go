package models

import "time"

// ExecutionResult is the outcome of one agent invocation.
// Exactly one is produced per planned agent, success or not, and the
// result slice handed to the merger is index-aligned with the plan.
type ExecutionResult struct {
	// AgentName is the name of the agent that produced this result.
	AgentName string `json:"agent_name"`
	// Output is the agent's answer text. May be empty.
	Output string `json:"output"`
	// Err is non-nil if the agent failed, panicked, or timed out.
	Err error `json:"-"`
	// Duration is how long the agent ran.
	Duration time.Duration `json:"duration"`
	// ToolCalls are the identifiers of tools the agent reported
	// invoking, in invocation order. May be empty.
	ToolCalls []string `json:"tool_calls,omitempty"`
}

// Succeeded returns true if the agent produced a usable result.
func (r ExecutionResult) Succeeded() bool {
	return r.Err == nil
}

// Result is the final output of one orchestration run.
// Ownership passes to the caller; it has no further lifecycle.
type Result struct {
	// Output is the merged answer text.
	Output string `json:"output"`
	// ContributingAgents are the names of agents whose output was
	// incorporated into Output.
	ContributingAgents []string `json:"contributing_agents"`
	// TotalDuration is the wall-clock time of the whole run.
	TotalDuration time.Duration `json:"total_duration"`
	// Degraded is true if any stage fell back or partially failed
	// (skipped analysis, fallback selection, failed agents, or a
	// concatenation merge).
	Degraded bool `json:"degraded"`
}
