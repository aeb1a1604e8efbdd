package main

import (
	"testing"
	"time"

	"github.com/kvasey/chorus/internal/config"
)

func TestGetConfigValue(t *testing.T) {
	cfg := config.Default()

	got, err := getConfigValue(cfg, "orchestrator.run_deadline")
	if err != nil {
		t.Fatalf("getConfigValue: %v", err)
	}
	if got != "1m0s" {
		t.Errorf("run_deadline = %q, want 1m0s", got)
	}

	if _, err := getConfigValue(cfg, "nope.nope"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSetConfigValue(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "orchestrator.agent_timeout", "45s"); err != nil {
		t.Fatalf("setConfigValue: %v", err)
	}
	if cfg.Orchestrator.AgentTimeout != 45*time.Second {
		t.Errorf("agent timeout = %s, want 45s", cfg.Orchestrator.AgentTimeout)
	}

	if err := setConfigValue(cfg, "logging.debug_log", "/tmp/d.log"); err != nil {
		t.Fatalf("setConfigValue: %v", err)
	}
	if cfg.Logging.DebugLog != "/tmp/d.log" {
		t.Errorf("debug log = %q, want /tmp/d.log", cfg.Logging.DebugLog)
	}

	if err := setConfigValue(cfg, "orchestrator.concurrency_ceiling", "seven"); err == nil {
		t.Error("expected error for non-numeric ceiling")
	}
	if err := setConfigValue(cfg, "mystery.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSetConfigValueAPIKeyMasking(t *testing.T) {
	cfg := config.Default()
	if err := setConfigValue(cfg, "anthropic.api_key", "sk-ant-0123456789abcdef"); err != nil {
		t.Fatalf("setConfigValue: %v", err)
	}
	got, err := getConfigValue(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatalf("getConfigValue: %v", err)
	}
	if got != "sk-ant-...cdef" {
		t.Errorf("displayed key = %q, want masked form", got)
	}
}
