package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kvasey/chorus/internal/agent"
	"github.com/kvasey/chorus/pkg/models"
)

// State is a stage of the orchestration state machine.
type State string

const (
	// StateIdle is the initial state before a run begins.
	StateIdle State = "idle"
	// StateAnalyzing covers the query analysis stage.
	StateAnalyzing State = "analyzing"
	// StateSelecting covers agent selection.
	StateSelecting State = "selecting"
	// StateExecuting covers the parallel agent fan-out.
	StateExecuting State = "executing"
	// StateMerging covers result merging.
	StateMerging State = "merging"
	// StateDone is the terminal success state.
	StateDone State = "done"
	// StateFailed is the terminal failure state, reachable from any stage.
	StateFailed State = "failed"
)

// defaultRunDeadline bounds one whole Run call.
const defaultRunDeadline = 60 * time.Second

// Orchestrator composes analysis, selection, execution, and merging
// into a single Run operation. It holds no per-run mutable state:
// concurrent Run calls share only the immutable registry, the oracle,
// and the event channel.
type Orchestrator struct {
	registry    *agent.Registry
	analyzer    *Analyzer
	selector    *Selector
	coordinator *Coordinator
	merger      *Merger
	runDeadline time.Duration
	logger      *DebugLogger

	// events is the channel for emitting orchestrator events.
	events chan Event
	// droppedEvents counts events discarded because the channel was full.
	droppedEvents atomic.Uint64
}

// New creates an Orchestrator with the given configuration.
func New(req RequiredConfig, opts ...Option) (*Orchestrator, error) {
	if req.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if req.Oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}

	options := &orchestratorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.runDeadline <= 0 {
		options.runDeadline = defaultRunDeadline
	}
	if options.eventBuffer <= 0 {
		options.eventBuffer = 100
	}
	if options.logger == nil {
		options.logger = NopLogger()
	}
	setPackageLogger(options.logger)

	coordinator := NewCoordinator(req.Registry, options.sink, options.agentTimeout, options.ceiling)

	o := &Orchestrator{
		registry:    req.Registry,
		analyzer:    NewAnalyzer(req.Oracle),
		selector:    NewSelector(req.Registry, req.Oracle, options.fallbackCap),
		coordinator: coordinator,
		merger:      NewMerger(req.Oracle),
		runDeadline: options.runDeadline,
		logger:      options.logger,
		events:      make(chan Event, options.eventBuffer),
	}
	coordinator.setEmitter(o.emitEvent)
	return o, nil
}

// Events returns the channel for receiving orchestrator events.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// DroppedEventCount returns how many events were dropped because no
// consumer kept up with the channel.
func (o *Orchestrator) DroppedEventCount() uint64 {
	return o.droppedEvents.Load()
}

// emitEvent publishes an event without blocking; full channels drop.
func (o *Orchestrator) emitEvent(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case o.events <- e:
	default:
		o.droppedEvents.Add(1)
	}
}

// Run executes one orchestration: analyze the query, select agents,
// fan out, and merge. The whole call is bounded by the run deadline.
// Stage-local failures degrade (reflected in Result.Degraded); only
// whole-pipeline failures return an error.
func (o *Orchestrator) Run(ctx context.Context, query string, reqContext map[string]any) (models.Result, error) {
	start := time.Now()
	runID := uuid.New().String()[:8]

	state := StateIdle
	fail := func(stage State, err error) (models.Result, error) {
		o.emitEvent(Event{Type: EventRunFailed, RunID: runID, Stage: stage, Error: err})
		o.logger.Log("[run %s] failed in %s: %v", runID, stage, err)
		return models.Result{}, err
	}

	if o.registry.Len() == 0 {
		// Fail fast without touching the oracle.
		return fail(state, ErrNoAgentAvailable)
	}

	ctx, cancel := context.WithTimeout(ctx, o.runDeadline)
	defer cancel()

	o.emitEvent(Event{Type: EventRunStarted, RunID: runID, Stage: state, Message: query})
	o.logger.Log("[run %s] started: %q", runID, query)

	degraded := false

	// Idle -> Analyzing. Analysis failure degrades, never aborts.
	state = StateAnalyzing
	analysis, err := o.analyzer.Analyze(ctx, query)
	if err != nil {
		o.logger.Log("[run %s] analysis skipped: %v", runID, err)
		analysis = nil
		degraded = true
	}
	o.emitEvent(Event{Type: EventAnalysisCompleted, RunID: runID, Stage: state})

	// Analyzing -> Selecting.
	state = StateSelecting
	plan, err := o.selector.Select(ctx, query, analysis, reqContext)
	if err != nil {
		return fail(state, err)
	}
	if plan.Source == models.PlanSourceFallback {
		degraded = true
	}
	o.emitEvent(Event{
		Type: EventAgentsSelected, RunID: runID, Stage: state,
		Message: fmt.Sprintf("%v (source=%s)", plan.Agents, plan.Source),
	})
	o.logger.Log("[run %s] selected %v via %s", runID, plan.Agents, plan.Source)

	// Selecting -> Executing. Partial failures are data, not a halt.
	state = StateExecuting
	results, err := o.coordinator.Execute(ctx, runID, plan, query, reqContext)
	if err != nil {
		return fail(state, err)
	}

	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		} else {
			degraded = true
		}
	}

	// A deadline or cancellation with zero completed results is a
	// whole-pipeline failure; with at least one result we proceed to
	// merge whatever finished.
	if ctxErr := ctx.Err(); ctxErr != nil && succeeded == 0 {
		return fail(state, fmt.Errorf("run %s: %w", runID, ctxErr))
	}
	if ctx.Err() != nil {
		degraded = true
	}

	// Executing -> Merging. Merge degradation is handled inside Merge.
	state = StateMerging
	o.emitEvent(Event{Type: EventMergeStarted, RunID: runID, Stage: state})
	output, contributors, mergeDegraded, err := o.merger.Merge(ctx, results, query)
	if err != nil {
		return fail(state, err)
	}
	if mergeDegraded {
		degraded = true
	}
	o.emitEvent(Event{Type: EventMergeCompleted, RunID: runID, Stage: state})

	state = StateDone
	result := models.Result{
		Output:             output,
		ContributingAgents: contributors,
		TotalDuration:      time.Since(start),
		Degraded:           degraded,
	}
	o.emitEvent(Event{
		Type: EventRunDone, RunID: runID, Stage: state,
		Duration: result.TotalDuration,
		Message:  fmt.Sprintf("contributors=%v degraded=%v", contributors, degraded),
	})
	o.logger.Log("[run %s] done in %s: contributors=%v degraded=%v",
		runID, result.TotalDuration, contributors, degraded)
	return result, nil
}
