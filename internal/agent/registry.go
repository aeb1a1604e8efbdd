package agent

import (
	"fmt"
	"sort"
)

// Entry pairs an agent with its registration-time priority.
type Entry struct {
	// Agent is the capability provider.
	Agent Agent
	// Priority orders the agent for fallback selection (lower first).
	Priority Priority
}

// Registry is an immutable, priority-ordered collection of agents.
// It is built once via RegistryBuilder and is safe for concurrent reads
// without locking. Membership can only change by building a new registry.
type Registry struct {
	entries []Entry
	byName  map[string]Agent
}

// RegistryBuilder accumulates registrations before freezing them into
// a Registry.
type RegistryBuilder struct {
	entries []Entry
}

// NewRegistryBuilder creates an empty builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// Register adds an agent at the given priority.
// Returns the builder for chaining.
func (b *RegistryBuilder) Register(a Agent, p Priority) *RegistryBuilder {
	b.entries = append(b.entries, Entry{Agent: a, Priority: p})
	return b
}

// Build freezes the registrations into an immutable Registry.
// Agents are ordered by priority, with registration order breaking ties.
// Returns an error on duplicate agent names.
func (b *RegistryBuilder) Build() (*Registry, error) {
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Priority < entries[j].Priority
	})

	byName := make(map[string]Agent, len(entries))
	for _, e := range entries {
		name := e.Agent.Name()
		if name == "" {
			return nil, fmt.Errorf("agent with empty name registered")
		}
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("duplicate agent name %q", name)
		}
		byName[name] = e.Agent
	}

	return &Registry{entries: entries, byName: byName}, nil
}

// Get returns the agent with the given name, or nil if not registered.
func (r *Registry) Get(name string) Agent {
	return r.byName[name]
}

// Entries returns the agents in priority order.
// The returned slice must not be modified.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Names returns all agent names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Agent.Name()
	}
	return names
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	return len(r.entries)
}
