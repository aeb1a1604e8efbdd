package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/kvasey/chorus/internal/agent"
)

// fakeAgent is a scriptable Agent for tests.
type fakeAgent struct {
	name      string
	desc      string
	canHandle bool
	output    string
	toolCalls []string
	err       error
	delay     time.Duration
	panicMsg  string

	mu    sync.Mutex
	calls int
}

func (f *fakeAgent) Name() string        { return f.name }
func (f *fakeAgent) Description() string { return f.desc }

func (f *fakeAgent) CanHandle(ctx context.Context, query string, reqContext map[string]any) bool {
	return f.canHandle
}

func (f *fakeAgent) Execute(ctx context.Context, query string, reqContext map[string]any) (string, []string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}
	return f.output, f.toolCalls, f.err
}

func (f *fakeAgent) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// scriptedOracle answers prompts by keyword: the analysis prompt gets
// the analysis response, the selection prompt gets the selection
// response, anything else gets the merge response. Any response set to
// failSentinel produces an error instead.
type scriptedOracle struct {
	analysis  string
	selection string
	merge     string

	mu    sync.Mutex
	calls []string
}

const failSentinel = "\x00fail"

var errScripted = errors.New("scripted oracle failure")

func (o *scriptedOracle) Complete(ctx context.Context, prompt string) (string, error) {
	o.mu.Lock()
	o.calls = append(o.calls, prompt)
	o.mu.Unlock()

	var resp string
	switch {
	case strings.Contains(prompt, "Classify the following user query"):
		resp = o.analysis
	case strings.Contains(prompt, "Available agents:"):
		resp = o.selection
	default:
		resp = o.merge
	}

	if resp == failSentinel {
		return "", errScripted
	}
	return resp, nil
}

func (o *scriptedOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.calls)
}

// recordingSink captures execution records for assertions.
type recordingSink struct {
	mu      sync.Mutex
	records []ExecutionRecord
}

func (s *recordingSink) RecordExecution(rec ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *recordingSink) all() []ExecutionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ExecutionRecord, len(s.records))
	copy(out, s.records)
	return out
}

// buildRegistry constructs a registry from fake agents at the given priority.
func buildRegistry(t interface{ Fatalf(string, ...any) }, entries ...agent.Entry) *agent.Registry {
	b := agent.NewRegistryBuilder()
	for _, e := range entries {
		b.Register(e.Agent, e.Priority)
	}
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}
