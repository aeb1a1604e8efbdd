package exec

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesOutput(t *testing.T) {
	r := NewRunner()
	out, err := r.Run(context.Background(), "", "echo", "hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(string(out)) != "hello" {
		t.Errorf("output = %q, want hello", out)
	}
}

func TestRunShell(t *testing.T) {
	r := NewRunner()
	out, err := r.RunShell(context.Background(), "", "echo a && echo b")
	if err != nil {
		t.Fatalf("RunShell: %v", err)
	}
	if !strings.Contains(string(out), "a") || !strings.Contains(string(out), "b") {
		t.Errorf("output = %q, want both lines", out)
	}
}

func TestRunWorkDir(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner()
	out, err := r.Run(context.Background(), dir, "pwd")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(string(out), dir) {
		t.Errorf("pwd output = %q, want it to contain %q", out, dir)
	}
}

func TestRunFailureWrapsError(t *testing.T) {
	r := NewRunner()
	_, err := r.Run(context.Background(), "", "sh", "-c", "exit 3")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "run sh") {
		t.Errorf("error = %v, want command name in message", err)
	}
}

func TestRunHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := NewRunner()
	start := time.Now()
	_, err := r.Run(ctx, "", "sleep", "5")
	if err == nil {
		t.Fatal("expected error from cancelled command")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("command was not killed on context expiry")
	}
}
