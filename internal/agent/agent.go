// Package agent defines the capability interface implemented by
// specialized providers and the registry the orchestrator selects from.
package agent

import "context"

// Priority orders agents for fallback selection. Lower values are tried
// first. Priority is assigned at registration time; the engine never
// derives it from an agent's type.
type Priority int

const (
	// PriorityDataAnalysis is for agents that compute over structured data.
	PriorityDataAnalysis Priority = 10
	// PriorityKnowledgeRetrieval is for agents that look up existing documents.
	PriorityKnowledgeRetrieval Priority = 20
	// PriorityGenericTool is for general-purpose tool and file agents.
	PriorityGenericTool Priority = 30
)

// Agent is a capability provider. Implementations live outside the
// orchestration engine and are consumed only through this interface.
type Agent interface {
	// Name returns the unique, stable identifier of the agent.
	Name() string

	// Description returns a natural-language capability summary.
	// It is used verbatim in oracle selection prompts.
	Description() string

	// CanHandle reports whether the agent can answer the query.
	// It may itself call the oracle; its latency counts against the
	// fallback-selection budget, so implementations should be cheap.
	CanHandle(ctx context.Context, query string, reqContext map[string]any) bool

	// Execute answers the query. It must honor ctx cancellation and
	// return the identifiers of any tools it invoked, in order.
	Execute(ctx context.Context, query string, reqContext map[string]any) (output string, toolCalls []string, err error)
}
