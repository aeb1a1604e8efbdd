package main

import (
	"fmt"
	"os"

	"github.com/kvasey/chorus/internal/config"
	"github.com/kvasey/chorus/internal/tui"
)

// runInteractive launches the persistent TUI loop. The agent manifest
// is watched for the lifetime of the session: saving agents.yaml swaps
// in a rebuilt registry for the next query without a restart.
func runInteractive() error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	program, _ := tui.NewProgram(eng)
	go tui.ForwardEvents(program, eng.Events())

	watcher, err := config.WatchManifest(manifestPath(), func(m *config.AgentManifest) {
		if err := eng.Reload(m); err != nil {
			fmt.Fprintf(os.Stderr, "manifest reload failed: %v\n", err)
			return
		}
		// A fresh orchestrator means a fresh event channel; the old
		// forwarder idles on the retired one.
		go tui.ForwardEvents(program, eng.Events())
	})
	if err != nil {
		return fmt.Errorf("watch manifest: %w", err)
	}
	defer watcher.Close()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
