package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/kvasey/chorus/internal/oracle"
	"github.com/kvasey/chorus/pkg/models"
)

// analysisPromptTemplate asks the oracle to classify a query.
// The response format is parsed line by line; anything that doesn't
// match is coerced to a safe default rather than treated as an error.
const analysisPromptTemplate = `Classify the following user query.

Query: %s

Respond with exactly three lines, nothing else:
intent: one of search, analyze, create, general
entities: a comma-separated list of the key entities mentioned, or none
complexity: one of low, medium, high`

// Analyzer derives intent, entities, and a complexity tier from a raw
// query using the oracle. It is a pure function of the query and never
// mutates shared state; one Analyzer may serve concurrent runs.
type Analyzer struct {
	oracle oracle.Completer
}

// NewAnalyzer creates an Analyzer backed by the given oracle.
func NewAnalyzer(o oracle.Completer) *Analyzer {
	return &Analyzer{oracle: o}
}

// Analyze classifies the query. An empty query is a valid low-complexity
// general case and does not touch the oracle. The only error returned is
// ErrOracleUnavailable (wrapped); callers must treat it as "skip
// analysis", not as a fatal orchestration failure.
func (a *Analyzer) Analyze(ctx context.Context, query string) (*models.Analysis, error) {
	if strings.TrimSpace(query) == "" {
		return &models.Analysis{
			Intent:     models.IntentGeneral,
			Complexity: models.ComplexityLow,
		}, nil
	}

	prompt := fmt.Sprintf(analysisPromptTemplate, query)
	resp, err := a.oracle.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: analysis call: %v", ErrOracleUnavailable, err)
	}

	analysis := parseAnalysis(resp)
	debugLog("[analyzer] intent=%s entities=%d complexity=%s", analysis.Intent, len(analysis.Entities), analysis.Complexity)
	return analysis, nil
}

// parseAnalysis extracts the structured fields from an oracle response.
// Unknown intents coerce to general, unknown complexities to medium,
// and an entity list of "none"/"n/a" to an empty sequence.
func parseAnalysis(resp string) *models.Analysis {
	analysis := &models.Analysis{
		Intent:     models.IntentGeneral,
		Complexity: models.ComplexityMedium,
	}

	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "intent":
			intent := models.Intent(strings.ToLower(value))
			if intent.Valid() {
				analysis.Intent = intent
			}
		case "entities":
			analysis.Entities = parseEntities(value)
		case "complexity":
			complexity := models.Complexity(strings.ToLower(value))
			if complexity.Valid() {
				analysis.Complexity = complexity
			}
		}
	}

	return analysis
}

// parseEntities splits a comma-separated entity list, preserving the
// extraction order. Placeholder answers map to an empty list.
func parseEntities(value string) []string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none", "n/a", "na":
		return nil
	}

	var entities []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			entities = append(entities, part)
		}
	}
	return entities
}
