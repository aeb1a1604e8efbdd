package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AgentManifest declares which built-in agents to register and at what
// priority. It is loaded from agents.yaml next to the user config.
type AgentManifest struct {
	Agents []AgentEntry `yaml:"agents"`
}

// AgentEntry configures one built-in agent.
type AgentEntry struct {
	// Name is the built-in agent to enable: docs, table, tool, or files.
	Name string `yaml:"name"`
	// Priority orders fallback selection; lower runs first. Zero means
	// use the agent's stock priority.
	Priority int `yaml:"priority"`
	// Disabled skips registration while keeping the entry in the file.
	Disabled bool `yaml:"disabled"`
	// Commands is the tool agent's whitelist override. Ignored by the
	// other agents.
	Commands []ManifestCommand `yaml:"commands"`
}

// ManifestCommand is one whitelisted command in an agent entry.
type ManifestCommand struct {
	Name string   `yaml:"name"`
	Argv []string `yaml:"argv"`
}

// knownAgents are the built-in agent names a manifest may reference.
var knownAgents = map[string]bool{
	"docs":  true,
	"table": true,
	"tool":  true,
	"files": true,
}

// LoadManifest reads and validates an agent manifest. A missing file is
// not an error: the stock agent set applies.
func LoadManifest(path string) (*AgentManifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read agent manifest: %w", err)
	}

	m := &AgentManifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse agent manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid agent manifest: %w", err)
	}
	return m, nil
}

func (m *AgentManifest) validate() error {
	seen := make(map[string]bool, len(m.Agents))
	for _, e := range m.Agents {
		if e.Name == "" {
			return fmt.Errorf("agent entry with empty name")
		}
		if !knownAgents[e.Name] {
			return fmt.Errorf("unknown agent %q", e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate agent %q", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// Enabled returns the entries that are not disabled.
func (m *AgentManifest) Enabled() []AgentEntry {
	var out []AgentEntry
	for _, e := range m.Agents {
		if !e.Disabled {
			out = append(out, e)
		}
	}
	return out
}

// DefaultManifest returns the stock agent set with zero priorities,
// meaning each agent's own stock priority applies.
func DefaultManifest() *AgentManifest {
	return &AgentManifest{
		Agents: []AgentEntry{
			{Name: "table"},
			{Name: "docs"},
			{Name: "tool"},
			{Name: "files"},
		},
	}
}
