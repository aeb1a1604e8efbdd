package orchestrator

import (
	"time"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventRunStarted indicates an orchestration run has begun.
	EventRunStarted EventType = "run_started"
	// EventAnalysisCompleted indicates query analysis finished (or was skipped).
	EventAnalysisCompleted EventType = "analysis_completed"
	// EventAgentsSelected indicates a selection plan was produced.
	EventAgentsSelected EventType = "agents_selected"
	// EventAgentStarted indicates an agent began executing.
	EventAgentStarted EventType = "agent_started"
	// EventAgentCompleted indicates an agent finished successfully.
	EventAgentCompleted EventType = "agent_completed"
	// EventAgentFailed indicates an agent errored, panicked, or timed out.
	EventAgentFailed EventType = "agent_failed"
	// EventMergeStarted indicates result merging has begun.
	EventMergeStarted EventType = "merge_started"
	// EventMergeCompleted indicates result merging finished.
	EventMergeCompleted EventType = "merge_completed"
	// EventRunDone indicates the run completed with a result.
	EventRunDone EventType = "run_done"
	// EventRunFailed indicates the run terminated with an error.
	EventRunFailed EventType = "run_failed"
)

// Event represents an event emitted by the orchestrator.
// Events drive the TUI and progress reporting; they are advisory and
// may be dropped if the consumer falls behind.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// RunID identifies the orchestration run that emitted the event.
	RunID string
	// Stage is the state-machine stage active when the event fired.
	Stage State
	// AgentName is the related agent, if applicable.
	AgentName string
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Duration is the elapsed time, for completion events.
	Duration time.Duration
}
