// Package tui provides the interactive terminal interface for chorus.
//
// The interface is a single-screen loop: the user types a query, the
// orchestrator runs it, and the screen shows live per-agent progress
// fed by the orchestrator's event stream, followed by the merged
// answer. Queries can be submitted repeatedly; Ctrl+C or Esc quits.
//
// Usage:
//
//	program, _ := tui.NewProgram(runner)
//	go tui.ForwardEvents(program, events)
//	program.Run()
//
// Events must be forwarded to the program by the caller so the TUI
// never blocks the orchestrator.
package tui
