// Package models defines the shared value types that flow between the
// analyzer, selector, coordinator, and merger.
package models

// Intent represents the classified intent of a user query.
type Intent string

const (
	// IntentSearch indicates the query is looking for existing information.
	IntentSearch Intent = "search"
	// IntentAnalyze indicates the query asks for computation or comparison.
	IntentAnalyze Intent = "analyze"
	// IntentCreate indicates the query asks to produce something new.
	IntentCreate Intent = "create"
	// IntentGeneral is the catch-all for queries that fit no other intent.
	IntentGeneral Intent = "general"
)

// Valid returns true if the intent is a known value.
func (i Intent) Valid() bool {
	switch i {
	case IntentSearch, IntentAnalyze, IntentCreate, IntentGeneral:
		return true
	default:
		return false
	}
}

// Complexity represents the estimated effort tier of a query.
// It is informational only; no control flow depends on it.
type Complexity string

const (
	// ComplexityLow indicates a simple single-fact query.
	ComplexityLow Complexity = "low"
	// ComplexityMedium indicates a query needing some synthesis.
	ComplexityMedium Complexity = "medium"
	// ComplexityHigh indicates a multi-part or open-ended query.
	ComplexityHigh Complexity = "high"
)

// Valid returns true if the complexity is a known value.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	default:
		return false
	}
}

// Analysis contains the result of analyzing a user query.
// It is created once per orchestration run, passed to selection,
// and discarded afterwards.
type Analysis struct {
	// Intent is the classified query intent.
	Intent Intent `json:"intent"`
	// Entities are free-form strings extracted from the query,
	// in extraction order. Duplicates are allowed.
	Entities []string `json:"entities"`
	// Complexity is the estimated effort tier.
	Complexity Complexity `json:"complexity"`
}
