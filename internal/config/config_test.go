package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPathOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
anthropic:
  model: claude-sonnet-4-20250514
  max_tokens: 2048
orchestrator:
  run_deadline: 90s
  concurrency_ceiling: 8
logging:
  debug_log: /tmp/chorus-debug.log
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q, want configured value", cfg.Anthropic.Model)
	}
	if cfg.Anthropic.MaxTokens != 2048 {
		t.Errorf("max tokens = %d, want 2048", cfg.Anthropic.MaxTokens)
	}
	if cfg.Orchestrator.RunDeadline != 90*time.Second {
		t.Errorf("run deadline = %s, want 90s", cfg.Orchestrator.RunDeadline)
	}
	if cfg.Orchestrator.ConcurrencyCeiling != 8 {
		t.Errorf("ceiling = %d, want 8", cfg.Orchestrator.ConcurrencyCeiling)
	}
	if cfg.Logging.DebugLog != "/tmp/chorus-debug.log" {
		t.Errorf("debug log = %q, want configured path", cfg.Logging.DebugLog)
	}
	// Untouched keys keep their defaults.
	if cfg.Orchestrator.AgentTimeout != 30*time.Second {
		t.Errorf("agent timeout = %s, want default 30s", cfg.Orchestrator.AgentTimeout)
	}
	if cfg.Orchestrator.FallbackCap != 3 {
		t.Errorf("fallback cap = %d, want default 3", cfg.Orchestrator.FallbackCap)
	}
}

func TestLoadFromPathExpandsAPIKeyEnv(t *testing.T) {
	t.Setenv("TEST_CHORUS_KEY", "sk-ant-expanded-key-value")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("anthropic:\n  api_key: ${TEST_CHORUS_KEY}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-expanded-key-value" {
		t.Errorf("api key = %q, want expanded value", cfg.Anthropic.APIKey)
	}
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.Orchestrator.RunDeadline != 60*time.Second {
		t.Errorf("run deadline = %s, want 60s", cfg.Orchestrator.RunDeadline)
	}
	if cfg.Orchestrator.ConcurrencyCeiling != 5 {
		t.Errorf("ceiling = %d, want 5", cfg.Orchestrator.ConcurrencyCeiling)
	}
	if cfg.Anthropic.MaxTokens != 1024 {
		t.Errorf("max tokens = %d, want 1024", cfg.Anthropic.MaxTokens)
	}
	if cfg.Storage.UsageDB == "" {
		t.Error("usage db path should default to a data-home location")
	}
}

func TestResolveAPIKeyPrecedence(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")

	cfg := &Config{}
	cfg.Anthropic.APIKey = "sk-ant-from-config"

	key, source, err := ResolveAPIKey(cfg)
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "sk-ant-from-env" || source != KeySourceEnv {
		t.Errorf("got %q from %s, want env key", key, source)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	key, source, err = ResolveAPIKey(cfg)
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "sk-ant-from-config" || source != KeySourceConfig {
		t.Errorf("got %q from %s, want config key", key, source)
	}

	cfg.Anthropic.APIKey = ""
	if _, source, err = ResolveAPIKey(cfg); err != ErrNoAPIKey || source != KeySourceNone {
		t.Errorf("got source %s err %v, want none/ErrNoAPIKey", source, err)
	}
}

func TestResolveAPIKeyUnresolvedReference(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := &Config{}
	cfg.Anthropic.APIKey = "${DOES_NOT_EXIST_CHORUS}"

	if _, _, err := ResolveAPIKey(cfg); err != ErrNoAPIKey {
		t.Errorf("err = %v, want ErrNoAPIKey for unresolved reference", err)
	}
}

func TestValidateAPIKey(t *testing.T) {
	if err := ValidateAPIKey("sk-ant-0123456789abcdef"); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if err := ValidateAPIKey(""); err != ErrNoAPIKey {
		t.Errorf("empty key: err = %v, want ErrNoAPIKey", err)
	}
	if err := ValidateAPIKey("not-a-key"); err == nil {
		t.Error("expected error for wrong prefix")
	}
	if err := ValidateAPIKey("sk-ant-x"); err == nil {
		t.Error("expected error for short key")
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey(""); got != "(not set)" {
		t.Errorf("empty mask = %q", got)
	}
	if got := MaskAPIKey("sk-ant-short"); got != "***" {
		t.Errorf("short mask = %q", got)
	}
	got := MaskAPIKey("sk-ant-0123456789abcdef")
	if got != "sk-ant-...cdef" {
		t.Errorf("mask = %q, want prefix and last four", got)
	}
}

func TestLoadManifestMissingFileReturnsDefaults(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "agents.yaml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Agents) != 4 {
		t.Errorf("got %d default agents, want 4", len(m.Agents))
	}
}

func TestLoadManifestParsesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	content := `
agents:
  - name: docs
    priority: 5
  - name: tool
    disabled: true
    commands:
      - name: date
        argv: [date, -u]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Agents) != 2 {
		t.Fatalf("got %d agents, want 2", len(m.Agents))
	}
	if m.Agents[0].Name != "docs" || m.Agents[0].Priority != 5 {
		t.Errorf("first entry = %+v, want docs at priority 5", m.Agents[0])
	}
	if !m.Agents[1].Disabled {
		t.Error("tool entry should be disabled")
	}
	if len(m.Agents[1].Commands) != 1 || m.Agents[1].Commands[0].Argv[1] != "-u" {
		t.Errorf("tool commands = %+v, want the override whitelist", m.Agents[1].Commands)
	}

	enabled := m.Enabled()
	if len(enabled) != 1 || enabled[0].Name != "docs" {
		t.Errorf("enabled = %+v, want only docs", enabled)
	}
}

func TestLoadManifestRejectsUnknownAgent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte("agents:\n  - name: mystery\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("expected error for unknown agent name")
	}
}

func TestLoadManifestRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte("agents:\n  - name: docs\n  - name: docs\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("expected error for duplicate agent")
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	if err := os.WriteFile(path, []byte("agents:\n  - name: docs\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *AgentManifest, 1)
	w, err := WatchManifest(path, func(m *AgentManifest) {
		select {
		case reloaded <- m:
		default:
		}
	})
	if err != nil {
		t.Fatalf("WatchManifest: %v", err)
	}
	defer w.Close()

	if got := len(w.Manifest().Agents); got != 1 {
		t.Fatalf("initial manifest has %d agents, want 1", got)
	}

	if err := os.WriteFile(path, []byte("agents:\n  - name: docs\n  - name: files\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case m := <-reloaded:
		if len(m.Agents) != 2 {
			t.Errorf("reloaded manifest has %d agents, want 2", len(m.Agents))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for manifest reload")
	}
}

func TestWatcherKeepsManifestOnParseFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	if err := os.WriteFile(path, []byte("agents:\n  - name: docs\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := WatchManifest(path, nil)
	if err != nil {
		t.Fatalf("WatchManifest: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("agents:\n  - name: mystery\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to process the event.
	time.Sleep(200 * time.Millisecond)

	m := w.Manifest()
	if len(m.Agents) != 1 || m.Agents[0].Name != "docs" {
		t.Errorf("manifest = %+v, want the last valid one retained", m.Agents)
	}
}
