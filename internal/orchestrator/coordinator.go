package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kvasey/chorus/internal/agent"
	"github.com/kvasey/chorus/pkg/models"
)

const (
	// defaultAgentTimeout bounds a single agent execution.
	defaultAgentTimeout = 30 * time.Second
	// defaultConcurrencyCeiling caps parallel agent dispatch even when
	// the plan is longer (the rule fallback can select many agents).
	defaultConcurrencyCeiling = 5
)

// ExecutionRecord is the observability payload emitted to the sink after
// each agent completes, success or failure.
type ExecutionRecord struct {
	// RunID identifies the orchestration run.
	RunID string
	// AgentName is the agent that executed.
	AgentName string
	// Duration is how long the agent ran.
	Duration time.Duration
	// TokensIn / TokensOut are token counts if the agent reports them,
	// zero otherwise.
	TokensIn  int64
	TokensOut int64
	// ToolCalls are the tool identifiers the agent reported invoking.
	ToolCalls []string
	// Err is the agent's failure, nil on success.
	Err error
	// Timestamp is when the agent finished.
	Timestamp time.Time
}

// Sink receives execution records. Implementations own their internal
// synchronization: records arrive concurrently from multiple agents and
// multiple concurrent runs. The coordinator only emits, never queries.
type Sink interface {
	RecordExecution(rec ExecutionRecord)
}

// UsageReporter is implemented by agents that can report token usage
// for their most recent execution.
type UsageReporter interface {
	Usage() (inputTokens, outputTokens int64)
}

// nopSink discards records.
type nopSink struct{}

func (nopSink) RecordExecution(ExecutionRecord) {}

// Coordinator runs the agents of a selection plan with bounded
// concurrency, per-agent timeouts, and error isolation. One agent's
// failure or timeout never cancels its siblings.
type Coordinator struct {
	registry     *agent.Registry
	sink         Sink
	agentTimeout time.Duration
	ceiling      int
	// emit publishes per-agent lifecycle events. Never nil.
	emit func(Event)
}

// NewCoordinator creates a Coordinator. sink may be nil (records are
// discarded); zero or negative timeout/ceiling select the defaults.
func NewCoordinator(registry *agent.Registry, sink Sink, agentTimeout time.Duration, ceiling int) *Coordinator {
	if sink == nil {
		sink = nopSink{}
	}
	if agentTimeout <= 0 {
		agentTimeout = defaultAgentTimeout
	}
	if ceiling <= 0 {
		ceiling = defaultConcurrencyCeiling
	}
	return &Coordinator{
		registry:     registry,
		sink:         sink,
		agentTimeout: agentTimeout,
		ceiling:      ceiling,
		emit:         func(Event) {},
	}
}

// setEmitter installs the orchestrator's event emitter.
func (c *Coordinator) setEmitter(emit func(Event)) {
	if emit != nil {
		c.emit = emit
	}
}

// Execute dispatches every agent in the plan concurrently, bounded by
// min(len(plan), ceiling). The returned slice is index-aligned with the
// plan regardless of completion order. Individual failures are data in
// the result slice, not a coordinator-level error; the only error case
// is an empty plan.
func (c *Coordinator) Execute(ctx context.Context, runID string, plan models.SelectionPlan, query string, reqContext map[string]any) ([]models.ExecutionResult, error) {
	if plan.Empty() {
		return nil, fmt.Errorf("execute called with empty plan")
	}

	limit := len(plan.Agents)
	if limit > c.ceiling {
		limit = c.ceiling
	}

	results := make([]models.ExecutionResult, len(plan.Agents))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, name := range plan.Agents {
		wg.Add(1)
		go func(slot int, name string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				result := models.ExecutionResult{
					AgentName: name,
					Err:       fmt.Errorf("cancelled before dispatch: %w", ctx.Err()),
				}
				c.finish(runID, result)
				results[slot] = result
				return
			}

			results[slot] = c.runAgent(ctx, runID, name, query, reqContext)
		}(i, name)
	}

	wg.Wait()
	return results, nil
}

// runAgent executes one agent under its own timeout and records the
// outcome to the sink. Panics inside the agent are converted into an
// error result.
func (c *Coordinator) runAgent(ctx context.Context, runID string, name string, query string, reqContext map[string]any) models.ExecutionResult {
	start := time.Now()
	c.emit(Event{Type: EventAgentStarted, RunID: runID, Stage: StateExecuting, AgentName: name, Timestamp: start})

	a := c.registry.Get(name)
	if a == nil {
		// Plans are validated at selection; this guards direct callers.
		result := models.ExecutionResult{
			AgentName: name,
			Err:       fmt.Errorf("agent %q not registered", name),
		}
		c.finish(runID, result)
		return result
	}

	agentCtx, cancel := context.WithTimeout(ctx, c.agentTimeout)
	defer cancel()

	type outcome struct {
		output    string
		toolCalls []string
		err       error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("agent %q panicked: %v", name, r)}
			}
		}()
		output, toolCalls, err := a.Execute(agentCtx, query, reqContext)
		done <- outcome{output: output, toolCalls: toolCalls, err: err}
	}()

	var result models.ExecutionResult
	select {
	case out := <-done:
		result = models.ExecutionResult{
			AgentName: name,
			Output:    out.output,
			Err:       out.err,
			ToolCalls: out.toolCalls,
		}
	case <-agentCtx.Done():
		// The agent goroutine keeps running until it notices the
		// cancelled context; the run does not wait for it.
		result = models.ExecutionResult{
			AgentName: name,
			Err:       fmt.Errorf("agent %q: %w", name, agentCtx.Err()),
		}
	}

	result.Duration = time.Since(start)

	var tokensIn, tokensOut int64
	if reporter, ok := a.(UsageReporter); ok {
		tokensIn, tokensOut = reporter.Usage()
	}

	c.finishWithUsage(runID, result, tokensIn, tokensOut)
	return result
}

// finish records a result with no usage data.
func (c *Coordinator) finish(runID string, result models.ExecutionResult) {
	c.finishWithUsage(runID, result, 0, 0)
}

// finishWithUsage emits the sink record and lifecycle event for a
// completed agent.
func (c *Coordinator) finishWithUsage(runID string, result models.ExecutionResult, tokensIn, tokensOut int64) {
	c.sink.RecordExecution(ExecutionRecord{
		RunID:     runID,
		AgentName: result.AgentName,
		Duration:  result.Duration,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
		ToolCalls: result.ToolCalls,
		Err:       result.Err,
		Timestamp: time.Now(),
	})

	if result.Err != nil {
		debugLog("[coordinator] agent %s failed after %s: %v", result.AgentName, result.Duration, result.Err)
		c.emit(Event{
			Type: EventAgentFailed, RunID: runID, Stage: StateExecuting,
			AgentName: result.AgentName, Error: result.Err,
			Duration: result.Duration, Timestamp: time.Now(),
		})
		return
	}

	debugLog("[coordinator] agent %s completed in %s", result.AgentName, result.Duration)
	c.emit(Event{
		Type: EventAgentCompleted, RunID: runID, Stage: StateExecuting,
		AgentName: result.AgentName, Duration: result.Duration, Timestamp: time.Now(),
	})
}
