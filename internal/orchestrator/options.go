package orchestrator

import (
	"time"

	"github.com/kvasey/chorus/internal/agent"
	"github.com/kvasey/chorus/internal/oracle"
)

// RequiredConfig contains the minimal required configuration for an
// Orchestrator. All fields are required and have no defaults.
type RequiredConfig struct {
	// Registry is the immutable set of available agents.
	Registry *agent.Registry
	// Oracle is the text-completion service used for analysis,
	// selection, and merging.
	Oracle oracle.Completer
}

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*orchestratorOptions)

// orchestratorOptions holds all optional configuration.
type orchestratorOptions struct {
	runDeadline  time.Duration
	agentTimeout time.Duration
	ceiling      int
	fallbackCap  int
	sink         Sink
	logger       *DebugLogger
	eventBuffer  int
}

// WithRunDeadline sets the overall deadline for one Run call.
func WithRunDeadline(d time.Duration) Option {
	return func(o *orchestratorOptions) { o.runDeadline = d }
}

// WithAgentTimeout sets the per-agent execution timeout.
func WithAgentTimeout(d time.Duration) Option {
	return func(o *orchestratorOptions) { o.agentTimeout = d }
}

// WithConcurrencyCeiling caps how many agents execute in parallel.
func WithConcurrencyCeiling(n int) Option {
	return func(o *orchestratorOptions) { o.ceiling = n }
}

// WithFallbackCap bounds how many agents rule-based selection may pick.
func WithFallbackCap(n int) Option {
	return func(o *orchestratorOptions) { o.fallbackCap = n }
}

// WithSink sets the observability sink receiving per-agent execution
// records. The sink must tolerate concurrent writes.
func WithSink(s Sink) Option {
	return func(o *orchestratorOptions) { o.sink = s }
}

// WithLogger sets the debug logger for orchestration internals.
func WithLogger(l *DebugLogger) Option {
	return func(o *orchestratorOptions) { o.logger = l }
}

// WithEventBuffer sets the event channel capacity.
func WithEventBuffer(n int) Option {
	return func(o *orchestratorOptions) { o.eventBuffer = n }
}
