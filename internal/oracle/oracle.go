// Package oracle provides the text-completion service used for query
// analysis, agent selection, and result merging.
package oracle

import "context"

// Completer is the narrow interface the orchestration engine consumes.
// Implementations must honor the context deadline; the engine applies
// its own timeouts and never retries.
type Completer interface {
	// Complete sends a plain-text prompt and returns the completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
// Tests use it to script oracle responses.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
