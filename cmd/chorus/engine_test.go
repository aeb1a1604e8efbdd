package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kvasey/chorus/internal/config"
)

type stubOracle struct{}

func (stubOracle) Complete(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

func testEngineConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.UsageDB = filepath.Join(dir, "usage.db")
	cfg.Storage.DocsDB = filepath.Join(dir, "docs.db")
	cfg.Storage.RecordsDB = filepath.Join(dir, "records.db")
	cfg.Tools.WorkDir = dir
	return cfg
}

func TestBuildEngineRequiresAPIKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := buildEngine()
	if !errors.Is(err, config.ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestBuildEngineRejectsMalformedAPIKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "not-a-real-key-but-long-enough")

	if _, err := buildEngine(); err == nil {
		t.Fatal("expected malformed API key to be rejected")
	}
}

func TestBuildRegistryFromDefaultManifest(t *testing.T) {
	cfg := testEngineConfig(t)

	registry, closers, err := buildRegistry(cfg, config.DefaultManifest())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	if registry.Len() != 4 {
		t.Fatalf("expected 4 stock agents, got %d", registry.Len())
	}
	for _, name := range []string{"docs", "table", "tool", "files"} {
		if registry.Get(name) == nil {
			t.Errorf("expected %s agent registered", name)
		}
	}
}

func TestEngineReloadSwapsRegistry(t *testing.T) {
	cfg := testEngineConfig(t)

	registry, closers, err := buildRegistry(cfg, config.DefaultManifest())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	e := &engine{
		cfg:          cfg,
		client:       stubOracle{},
		registry:     registry,
		agentClosers: closers,
	}
	defer e.Close()

	orch, err := e.newOrchestrator(registry)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	e.orch = orch

	trimmed := &config.AgentManifest{Agents: []config.AgentEntry{{Name: "files"}}}
	if err := e.Reload(trimmed); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if e.Agents().Len() != 1 {
		t.Fatalf("expected 1 agent after reload, got %d", e.Agents().Len())
	}
	if e.Agents().Get("files") == nil {
		t.Error("expected files agent to survive reload")
	}
	if e.Events() == orch.Events() {
		t.Error("expected reload to install a fresh orchestrator")
	}
}

func TestEngineReloadKeepsRegistryOnBadManifest(t *testing.T) {
	cfg := testEngineConfig(t)

	registry, closers, err := buildRegistry(cfg, config.DefaultManifest())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	e := &engine{
		cfg:          cfg,
		client:       stubOracle{},
		registry:     registry,
		agentClosers: closers,
	}
	defer e.Close()

	orch, err := e.newOrchestrator(registry)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	e.orch = orch

	// A manifest with no enabled agents cannot build a registry; the
	// engine must keep the previous one.
	empty := &config.AgentManifest{}
	if err := e.Reload(empty); err == nil {
		t.Fatal("expected error reloading an empty manifest")
	}
	if e.Agents().Len() != 4 {
		t.Errorf("expected previous registry retained, got %d agents", e.Agents().Len())
	}
}
