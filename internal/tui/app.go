package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kvasey/chorus/internal/orchestrator"
	"github.com/kvasey/chorus/pkg/models"
)

// Runner executes one orchestration run. It is the only coupling the
// TUI has to the engine; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, query string, reqContext map[string]any) (models.Result, error)
}

// EventMsg wraps an orchestrator event forwarded into the program.
type EventMsg struct {
	Event orchestrator.Event
}

// RunDoneMsg is sent when a run finishes, successfully or not.
type RunDoneMsg struct {
	Result models.Result
	Err    error
}

// agentStatus is one agent's line in the progress area.
type agentStatus struct {
	name     string
	state    string // running, done, failed
	duration string
	err      string
}

// App is the interactive model: an input field, a live progress area
// driven by orchestrator events, and the merged answer of the last run.
type App struct {
	runner Runner
	input  textinput.Model
	spin   spinner.Model

	running bool
	stage   string
	agents  map[string]*agentStatus
	order   []string

	result   models.Result
	runErr   error
	hasRun   bool
	width    int
	quitting bool
}

// NewApp creates an App that submits queries to runner.
func NewApp(runner Runner) *App {
	ti := textinput.New()
	ti.Placeholder = "Ask something and press Enter..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return &App{
		runner: runner,
		input:  ti,
		spin:   sp,
		agents: make(map[string]*agentStatus),
		width:  80,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			a.quitting = true
			return a, tea.Quit

		case "enter":
			query := strings.TrimSpace(a.input.Value())
			if query == "" || a.running {
				return a, nil
			}
			a.startRun()
			a.input.Reset()
			return a, tea.Batch(a.spin.Tick, a.submit(query))
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.input.Width = msg.Width - 6

	case EventMsg:
		a.applyEvent(msg.Event)
		return a, nil

	case RunDoneMsg:
		a.running = false
		a.result = msg.Result
		a.runErr = msg.Err
		a.hasRun = true
		a.stage = ""
		return a, nil

	case spinner.TickMsg:
		if !a.running {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// startRun resets per-run display state.
func (a *App) startRun() {
	a.running = true
	a.stage = "analyzing"
	a.agents = make(map[string]*agentStatus)
	a.order = nil
	a.runErr = nil
}

// submit runs the query off the update loop.
func (a *App) submit(query string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.runner.Run(context.Background(), query, nil)
		return RunDoneMsg{Result: result, Err: err}
	}
}

// applyEvent folds one orchestrator event into the display state.
func (a *App) applyEvent(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventAnalysisCompleted:
		a.stage = "selecting agents"
	case orchestrator.EventAgentsSelected:
		a.stage = "executing"
	case orchestrator.EventMergeStarted:
		a.stage = "merging"

	case orchestrator.EventAgentStarted:
		if _, ok := a.agents[ev.AgentName]; !ok {
			a.agents[ev.AgentName] = &agentStatus{name: ev.AgentName, state: "running"}
			a.order = append(a.order, ev.AgentName)
			sort.Strings(a.order)
		}

	case orchestrator.EventAgentCompleted:
		if s, ok := a.agents[ev.AgentName]; ok {
			s.state = "done"
			s.duration = ev.Duration.Round(time.Millisecond).String()
		}

	case orchestrator.EventAgentFailed:
		if s, ok := a.agents[ev.AgentName]; ok {
			s.state = "failed"
			s.duration = ev.Duration.Round(time.Millisecond).String()
			if ev.Error != nil {
				s.err = ev.Error.Error()
			}
		}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("chorus"))
	b.WriteString("\n\n")
	b.WriteString(inputBoxStyle.Width(a.width - 2).Render(promptStyle.Render("> ") + a.input.View()))
	b.WriteString("\n")

	if a.running {
		fmt.Fprintf(&b, "\n%s %s\n", a.spin.View(), stageStyle.Render(a.stage))
		b.WriteString(a.renderAgents())
	} else if a.hasRun {
		b.WriteString(a.renderResult())
	}

	b.WriteString("\n" + helpStyle.Render("enter: run  esc: quit"))
	return b.String()
}

func (a *App) renderAgents() string {
	var b strings.Builder
	for _, name := range a.order {
		s := a.agents[name]
		switch s.state {
		case "running":
			fmt.Fprintf(&b, "  %s %s\n", runningStyle.Render("●"), name)
		case "done":
			fmt.Fprintf(&b, "  %s %s (%s)\n", doneStyle.Render("✓"), name, s.duration)
		case "failed":
			fmt.Fprintf(&b, "  %s %s (%s): %s\n", failedStyle.Render("✗"), name, s.duration, s.err)
		}
	}
	return b.String()
}

func (a *App) renderResult() string {
	var b strings.Builder
	b.WriteString("\n")

	if a.runErr != nil {
		b.WriteString(failedStyle.Render("run failed: "+a.runErr.Error()) + "\n")
		return b.String()
	}

	b.WriteString(a.result.Output)
	b.WriteString("\n\n")

	meta := fmt.Sprintf("agents: %s  took: %s",
		strings.Join(a.result.ContributingAgents, ", "),
		a.result.TotalDuration.Round(time.Millisecond))
	if a.result.Degraded {
		meta += "  " + degradedStyle.Render("(degraded)")
	}
	b.WriteString(metaStyle.Render(meta) + "\n")
	return b.String()
}

// NewProgram creates the bubbletea program. The caller owns forwarding
// orchestrator events into it as EventMsg values.
func NewProgram(runner Runner) (*tea.Program, *App) {
	app := NewApp(runner)
	p := tea.NewProgram(app, tea.WithAltScreen())
	return p, app
}

// ForwardEvents pumps orchestrator events into the program until the
// channel closes. Run it in its own goroutine.
func ForwardEvents(p *tea.Program, events <-chan orchestrator.Event) {
	for ev := range events {
		p.Send(EventMsg{Event: ev})
	}
}
