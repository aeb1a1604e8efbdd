package models

// PlanSource identifies which selection strategy produced a plan.
type PlanSource string

const (
	// PlanSourceOracle indicates the plan came from model-assisted selection.
	PlanSourceOracle PlanSource = "oracle"
	// PlanSourceFallback indicates the plan came from predicate-based
	// rule selection after the oracle strategy produced nothing.
	PlanSourceFallback PlanSource = "fallback"
)

// SelectionPlan is the ordered list of agents chosen to run for one query.
// Order is priority order and determines merge-prompt order downstream.
// A plan is consumed exactly once by the execution coordinator.
type SelectionPlan struct {
	// Agents are the names of the agents to invoke, in priority order.
	Agents []string `json:"agents"`
	// Source records which strategy produced this plan.
	Source PlanSource `json:"source"`
}

// Empty returns true if the plan selects no agents.
func (p SelectionPlan) Empty() bool {
	return len(p.Agents) == 0
}
