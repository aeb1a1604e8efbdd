package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/kvasey/chorus/internal/agent"
	"github.com/kvasey/chorus/internal/oracle"
	"github.com/kvasey/chorus/pkg/models"
)

// defaultFallbackCap bounds how many agents the rule fallback may select.
const defaultFallbackCap = 3

// selectionPromptTemplate asks the oracle to pick agents for a query.
const selectionPromptTemplate = `You are routing a user query to specialized agents.

Available agents:
%s
Query: %s
%s
Respond with a comma-separated list of agent names that should handle
this query, best agent first. Use only names from the list above.
Respond with the names only, no other text.`

// Selector chooses which agents run for a query. The primary strategy
// asks the oracle; if that call fails or yields no valid names, a
// deterministic predicate-based fallback walks the registry in priority
// order. Selection never retries the oracle.
type Selector struct {
	registry    *agent.Registry
	oracle      oracle.Completer
	fallbackCap int
}

// NewSelector creates a Selector over the given registry and oracle.
// fallbackCap bounds the fallback plan size; values <= 0 use the default.
func NewSelector(registry *agent.Registry, o oracle.Completer, fallbackCap int) *Selector {
	if fallbackCap <= 0 {
		fallbackCap = defaultFallbackCap
	}
	return &Selector{
		registry:    registry,
		oracle:      o,
		fallbackCap: fallbackCap,
	}
}

// Select returns a plan of agents to invoke, in priority order.
// analysis may be nil when analysis was skipped. Returns
// ErrNoAgentAvailable when both strategies produce nothing; it never
// returns both a non-empty plan and an error.
func (s *Selector) Select(ctx context.Context, query string, analysis *models.Analysis, reqContext map[string]any) (models.SelectionPlan, error) {
	if s.registry.Len() == 0 {
		return models.SelectionPlan{}, ErrNoAgentAvailable
	}

	if names := s.selectByOracle(ctx, query, analysis); len(names) > 0 {
		return models.SelectionPlan{Agents: names, Source: models.PlanSourceOracle}, nil
	}

	names := s.selectByRules(ctx, query, reqContext)
	if len(names) == 0 {
		return models.SelectionPlan{}, ErrNoAgentAvailable
	}
	return models.SelectionPlan{Agents: names, Source: models.PlanSourceFallback}, nil
}

// selectByOracle runs the primary strategy. It returns nil on any oracle
// failure or when no returned token validates against the registry; the
// caller falls through to the rule strategy.
func (s *Selector) selectByOracle(ctx context.Context, query string, analysis *models.Analysis) []string {
	var catalog strings.Builder
	for _, e := range s.registry.Entries() {
		fmt.Fprintf(&catalog, "- %s: %s\n", e.Agent.Name(), e.Agent.Description())
	}

	summary := ""
	if analysis != nil {
		summary = fmt.Sprintf("Intent: %s. Entities: %s. Complexity: %s.\n",
			analysis.Intent, strings.Join(analysis.Entities, ", "), analysis.Complexity)
	}

	prompt := fmt.Sprintf(selectionPromptTemplate, catalog.String(), query, summary)
	resp, err := s.oracle.Complete(ctx, prompt)
	if err != nil {
		debugLog("[selector] oracle selection failed, using fallback: %v", err)
		return nil
	}

	names := s.validateNames(resp)
	if len(names) == 0 {
		debugLog("[selector] oracle returned no valid agent names: %q", resp)
	}
	return names
}

// validateNames parses the oracle's comma-separated answer and resolves
// each token against the registry: exact match first, then substring
// containment in either direction to tolerate formatting drift.
// Duplicates resolve once, keeping first position.
func (s *Selector) validateNames(resp string) []string {
	seen := make(map[string]bool)
	var names []string

	for _, token := range strings.Split(resp, ",") {
		token = strings.TrimSpace(token)
		token = strings.Trim(token, "\"'`.")
		if token == "" {
			continue
		}

		name := s.resolveName(token)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names
}

// resolveName maps one oracle token to a registered agent name, or ""
// if nothing matches.
func (s *Selector) resolveName(token string) string {
	if s.registry.Get(token) != nil {
		return token
	}

	lower := strings.ToLower(token)
	for _, name := range s.registry.Names() {
		lowerName := strings.ToLower(name)
		if lowerName == lower || strings.Contains(lower, lowerName) || strings.Contains(lowerName, lower) {
			return name
		}
	}
	return ""
}

// selectByRules runs the deterministic fallback: walk the registry in
// priority order and keep every agent whose predicate answers true,
// capped to bound fan-out.
func (s *Selector) selectByRules(ctx context.Context, query string, reqContext map[string]any) []string {
	var names []string
	for _, e := range s.registry.Entries() {
		if len(names) >= s.fallbackCap {
			break
		}
		if e.Agent.CanHandle(ctx, query, reqContext) {
			names = append(names, e.Agent.Name())
		}
	}
	return names
}
