// Package usage provides observability sinks that record per-agent
// execution metrics. Sinks own their synchronization: records arrive
// concurrently from multiple agents and multiple orchestration runs.
package usage

import (
	"sync"

	"github.com/kvasey/chorus/internal/orchestrator"
)

// AgentStats aggregates executions for one agent.
type AgentStats struct {
	// Executions is the total number of executions recorded.
	Executions int
	// Failures is how many of them carried an error.
	Failures int
	// TokensIn / TokensOut are summed token counts.
	TokensIn  int64
	TokensOut int64
	// ToolCalls is the total number of tool invocations reported.
	ToolCalls int
}

// Tracker is an in-memory sink aggregating execution records per agent.
type Tracker struct {
	mu    sync.Mutex
	stats map[string]*AgentStats
	total int
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{stats: make(map[string]*AgentStats)}
}

// RecordExecution implements orchestrator.Sink.
func (t *Tracker) RecordExecution(rec orchestrator.ExecutionRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats[rec.AgentName]
	if s == nil {
		s = &AgentStats{}
		t.stats[rec.AgentName] = s
	}

	s.Executions++
	if rec.Err != nil {
		s.Failures++
	}
	s.TokensIn += rec.TokensIn
	s.TokensOut += rec.TokensOut
	s.ToolCalls += len(rec.ToolCalls)
	t.total++
}

// Stats returns a copy of the per-agent aggregates.
func (t *Tracker) Stats() map[string]AgentStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]AgentStats, len(t.stats))
	for name, s := range t.stats {
		out[name] = *s
	}
	return out
}

// Total returns the total number of records seen.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Verify Tracker implements the sink interface at compile time.
var _ orchestrator.Sink = (*Tracker)(nil)
