package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/kvasey/chorus/internal/agent"
	"github.com/kvasey/chorus/internal/exec"
)

// ToolCommand is one whitelisted command the tool agent may run.
type ToolCommand struct {
	// Name is the keyword that triggers the command.
	Name string
	// Argv is the command and its fixed arguments. The agent never
	// interpolates query text into argv.
	Argv []string
}

// DefaultToolCommands is the stock whitelist. Read-only inspection
// commands only.
var DefaultToolCommands = []ToolCommand{
	{Name: "date", Argv: []string{"date"}},
	{Name: "disk", Argv: []string{"df", "-h"}},
	{Name: "uptime", Argv: []string{"uptime"}},
	{Name: "hostname", Argv: []string{"hostname"}},
}

// ToolAgent runs whitelisted system commands. Queries select a command
// by keyword; arbitrary command execution is deliberately impossible.
type ToolAgent struct {
	runner   exec.CommandRunner
	commands []ToolCommand
	workDir  string
}

// NewToolAgent creates a ToolAgent with the given whitelist. A nil or
// empty whitelist falls back to DefaultToolCommands.
func NewToolAgent(runner exec.CommandRunner, workDir string, commands []ToolCommand) *ToolAgent {
	if len(commands) == 0 {
		commands = DefaultToolCommands
	}
	return &ToolAgent{runner: runner, commands: commands, workDir: workDir}
}

// Name implements agent.Agent.
func (a *ToolAgent) Name() string { return "tool" }

// Description implements agent.Agent.
func (a *ToolAgent) Description() string {
	names := make([]string, len(a.commands))
	for i, c := range a.commands {
		names[i] = c.Name
	}
	return fmt.Sprintf("Runs whitelisted system commands (%s) and returns their output.", strings.Join(names, ", "))
}

// CanHandle reports true when the query names a whitelisted command.
func (a *ToolAgent) CanHandle(ctx context.Context, query string, reqContext map[string]any) bool {
	return a.match(query) != nil
}

// Execute runs the matched command and returns its combined output.
func (a *ToolAgent) Execute(ctx context.Context, query string, reqContext map[string]any) (string, []string, error) {
	cmd := a.match(query)
	if cmd == nil {
		return "", nil, fmt.Errorf("no whitelisted command matches query")
	}

	out, err := a.runner.Run(ctx, a.workDir, cmd.Argv[0], cmd.Argv[1:]...)
	toolCall := "tool." + cmd.Name
	if err != nil {
		return "", []string{toolCall}, fmt.Errorf("command %s: %w", cmd.Name, err)
	}
	return strings.TrimSpace(string(out)), []string{toolCall}, nil
}

// match returns the first whitelisted command named in the query.
func (a *ToolAgent) match(query string) *ToolCommand {
	q := strings.ToLower(query)
	for i := range a.commands {
		if strings.Contains(q, strings.ToLower(a.commands[i].Name)) {
			return &a.commands[i]
		}
	}
	return nil
}

// Verify ToolAgent implements the capability interface at compile time.
var _ agent.Agent = (*ToolAgent)(nil)
