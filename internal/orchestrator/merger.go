package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/kvasey/chorus/internal/oracle"
	"github.com/kvasey/chorus/pkg/models"
)

// mergePromptTemplate asks the oracle to synthesize one answer from
// several agent outputs.
const mergePromptTemplate = `Multiple specialized agents answered the same user query.
Combine their answers into one coherent response. Do not mention the
agents or that multiple answers were combined. Prefer concrete facts;
drop redundancy; resolve contradictions in favor of the more specific
answer.

Query: %s

%s
Combined answer:`

// Merger synthesizes a single response from agent results.
// A single success passes through verbatim; multiple successes are
// merged via the oracle, degrading to labeled concatenation when the
// merge call fails so the caller always receives the best available
// information.
type Merger struct {
	oracle oracle.Completer
}

// NewMerger creates a Merger backed by the given oracle.
func NewMerger(o oracle.Completer) *Merger {
	return &Merger{oracle: o}
}

// Merge combines results into one output and reports the contributing
// agent names. degraded is true when the oracle merge failed and the
// output is a concatenation. Returns an AgentErrors wrapping
// ErrAllAgentsFailed when no result succeeded.
func (m *Merger) Merge(ctx context.Context, results []models.ExecutionResult, query string) (output string, contributors []string, degraded bool, err error) {
	var succeeded []models.ExecutionResult
	failures := make(map[string]error)
	for _, r := range results {
		if r.Succeeded() {
			succeeded = append(succeeded, r)
		} else {
			failures[r.AgentName] = r.Err
		}
	}

	switch len(succeeded) {
	case 0:
		return "", nil, false, &AgentErrors{Agents: failures}
	case 1:
		// Identity law: a single successful result passes through unchanged.
		return succeeded[0].Output, []string{succeeded[0].AgentName}, false, nil
	}

	for _, r := range succeeded {
		contributors = append(contributors, r.AgentName)
	}

	var labeled strings.Builder
	for _, r := range succeeded {
		fmt.Fprintf(&labeled, "Answer from %s:\n%s\n\n", r.AgentName, r.Output)
	}

	prompt := fmt.Sprintf(mergePromptTemplate, query, labeled.String())
	merged, mergeErr := m.oracle.Complete(ctx, prompt)
	if mergeErr != nil {
		debugLog("[merger] oracle merge failed, concatenating %d outputs: %v", len(succeeded), mergeErr)
		return concatenate(succeeded), contributors, true, nil
	}

	return strings.TrimSpace(merged), contributors, false, nil
}

// concatenate joins successful outputs with agent-name headers.
func concatenate(results []models.ExecutionResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## %s\n\n%s", r.AgentName, r.Output)
	}
	return b.String()
}
