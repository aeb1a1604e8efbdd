package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kvasey/chorus/internal/orchestrator"
	"github.com/kvasey/chorus/pkg/models"
)

// fakeRunner returns a canned result without touching the engine.
type fakeRunner struct {
	result   models.Result
	err      error
	gotQuery string
}

func (f *fakeRunner) Run(ctx context.Context, query string, reqContext map[string]any) (models.Result, error) {
	f.gotQuery = query
	return f.result, f.err
}

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeString(app *App, s string) {
	for _, r := range s {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestSubmitStartsRun(t *testing.T) {
	runner := &fakeRunner{result: models.Result{Output: "answer"}}
	app := NewApp(runner)

	typeString(app, "hello")
	_, cmd := app.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	if !app.running {
		t.Error("app should be running after submit")
	}
	if app.input.Value() != "" {
		t.Error("input should reset after submit")
	}
}

func TestEmptySubmitIgnored(t *testing.T) {
	app := NewApp(&fakeRunner{})
	_, cmd := app.Update(keyMsg("enter"))
	if cmd != nil {
		t.Error("empty submit should be a no-op")
	}
	if app.running {
		t.Error("app should not be running")
	}
}

func TestSubmitWhileRunningIgnored(t *testing.T) {
	app := NewApp(&fakeRunner{})
	typeString(app, "first")
	app.Update(keyMsg("enter"))

	typeString(app, "second")
	_, cmd := app.Update(keyMsg("enter"))
	if cmd != nil {
		t.Error("submit during a run should be a no-op")
	}
}

func TestEventsDriveAgentLines(t *testing.T) {
	app := NewApp(&fakeRunner{})
	typeString(app, "q")
	app.Update(keyMsg("enter"))

	app.Update(EventMsg{Event: orchestrator.Event{
		Type: orchestrator.EventAgentStarted, AgentName: "docs",
	}})
	app.Update(EventMsg{Event: orchestrator.Event{
		Type: orchestrator.EventAgentStarted, AgentName: "table",
	}})
	app.Update(EventMsg{Event: orchestrator.Event{
		Type: orchestrator.EventAgentCompleted, AgentName: "docs", Duration: 120 * time.Millisecond,
	}})
	app.Update(EventMsg{Event: orchestrator.Event{
		Type: orchestrator.EventAgentFailed, AgentName: "table",
		Duration: 40 * time.Millisecond, Error: errors.New("timeout"),
	}})

	view := app.renderAgents()
	if !strings.Contains(view, "docs (120ms)") {
		t.Errorf("view = %q, want completed docs line", view)
	}
	if !strings.Contains(view, "table (40ms): timeout") {
		t.Errorf("view = %q, want failed table line", view)
	}
}

func TestStageFollowsLifecycleEvents(t *testing.T) {
	app := NewApp(&fakeRunner{})
	typeString(app, "q")
	app.Update(keyMsg("enter"))

	if app.stage != "analyzing" {
		t.Errorf("stage = %q, want analyzing at start", app.stage)
	}
	app.Update(EventMsg{Event: orchestrator.Event{Type: orchestrator.EventAnalysisCompleted}})
	if app.stage != "selecting agents" {
		t.Errorf("stage = %q, want selecting agents", app.stage)
	}
	app.Update(EventMsg{Event: orchestrator.Event{Type: orchestrator.EventAgentsSelected}})
	if app.stage != "executing" {
		t.Errorf("stage = %q, want executing", app.stage)
	}
	app.Update(EventMsg{Event: orchestrator.Event{Type: orchestrator.EventMergeStarted}})
	if app.stage != "merging" {
		t.Errorf("stage = %q, want merging", app.stage)
	}
}

func TestRunDoneShowsResult(t *testing.T) {
	app := NewApp(&fakeRunner{})
	typeString(app, "q")
	app.Update(keyMsg("enter"))

	app.Update(RunDoneMsg{Result: models.Result{
		Output:             "merged answer",
		ContributingAgents: []string{"docs", "table"},
		TotalDuration:      300 * time.Millisecond,
		Degraded:           true,
	}})

	if app.running {
		t.Error("app should stop running on done")
	}
	view := app.View()
	if !strings.Contains(view, "merged answer") {
		t.Errorf("view missing result output:\n%s", view)
	}
	if !strings.Contains(view, "docs, table") {
		t.Errorf("view missing contributors:\n%s", view)
	}
	if !strings.Contains(view, "degraded") {
		t.Errorf("view missing degraded marker:\n%s", view)
	}
}

func TestRunDoneShowsError(t *testing.T) {
	app := NewApp(&fakeRunner{})
	typeString(app, "q")
	app.Update(keyMsg("enter"))

	app.Update(RunDoneMsg{Err: errors.New("no agent available")})

	view := app.View()
	if !strings.Contains(view, "run failed: no agent available") {
		t.Errorf("view missing error:\n%s", view)
	}
}

func TestCtrlCQuits(t *testing.T) {
	app := NewApp(&fakeRunner{})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !app.quitting {
		t.Error("app should be quitting")
	}
	if !strings.Contains(app.View(), "Goodbye") {
		t.Error("quit view should say goodbye")
	}
}
