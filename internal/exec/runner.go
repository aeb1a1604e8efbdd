// Package exec provides an interface for command execution.
package exec

import (
	"context"
	"fmt"
	"os/exec"
)

// maxOutputBytes caps captured command output so a chatty tool cannot
// blow up an agent's result payload.
const maxOutputBytes = 256 * 1024

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr output,
	// truncated to a bounded size. The working directory is set to
	// workDir if non-empty.
	Run(ctx context.Context, workDir string, name string, args ...string) (output []byte, err error)

	// RunShell executes a shell command through "sh -c".
	RunShell(ctx context.Context, workDir string, command string) (output []byte, err error)
}

// OSRunner implements CommandRunner using os/exec.
type OSRunner struct{}

// NewRunner creates a new OSRunner.
func NewRunner() *OSRunner {
	return &OSRunner{}
}

// Run executes a command and returns combined stdout/stderr output.
func (r *OSRunner) Run(ctx context.Context, workDir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	out, err := cmd.CombinedOutput()
	if len(out) > maxOutputBytes {
		out = append(out[:maxOutputBytes], []byte("\n[output truncated]")...)
	}
	if err != nil {
		return out, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}

// RunShell executes a shell command through "sh -c".
func (r *OSRunner) RunShell(ctx context.Context, workDir string, command string) ([]byte, error) {
	return r.Run(ctx, workDir, "sh", "-c", command)
}

// Verify OSRunner implements CommandRunner at compile time.
var _ CommandRunner = (*OSRunner)(nil)
