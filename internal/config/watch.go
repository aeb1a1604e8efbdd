package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the agent manifest when its file changes on disk.
// The TUI uses it so a manifest edit takes effect without a restart.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu       sync.RWMutex
	manifest *AgentManifest

	// onChange, if set, is called with each successfully reloaded
	// manifest. Parse failures keep the previous manifest.
	onChange func(*AgentManifest)
}

// WatchManifest loads the manifest at path and starts watching its
// directory for changes. Watching the directory rather than the file
// survives editors that replace the file on save.
func WatchManifest(path string, onChange func(*AgentManifest)) (*Watcher, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create manifest watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch manifest directory: %w", err)
	}

	w := &Watcher{
		path:     path,
		watcher:  fw,
		done:     make(chan struct{}),
		manifest: m,
		onChange: onChange,
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.reload()
		case <-w.watcher.Errors:
			// Keep watching.
		}
	}
}

func (w *Watcher) reload() {
	m, err := LoadManifest(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	w.manifest = m
	cb := w.onChange
	w.mu.Unlock()

	if cb != nil {
		cb(m)
	}
}

// Manifest returns the most recently loaded manifest.
func (w *Watcher) Manifest() *AgentManifest {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.manifest
}

// Close stops watching.
func (w *Watcher) Close() {
	close(w.done)
	w.watcher.Close()
}
