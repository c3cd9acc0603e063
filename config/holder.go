package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/panelkit/flyout/core/schema"
)

// Definitions provides thread-safe access to the parsed panel definitions
// with hot reload support: when a YAML file in the definitions directory
// changes, the directory is re-parsed and listeners are notified.
type Definitions struct {
	mu       sync.RWMutex
	panels   []schema.Panel
	dir      string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func([]schema.Panel)
	stopCh   chan struct{}
}

// LoadDefinitions parses the definitions directory and returns a holder.
func LoadDefinitions(dir string, logger zerolog.Logger) (*Definitions, error) {
	panels, err := schema.ParseDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load panel definitions: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &Definitions{
		panels: panels,
		dir:    absDir,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Get returns the current panel definitions.
func (d *Definitions) Get() []schema.Panel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.panels
}

// OnChange registers a callback invoked after a successful reload.
func (d *Definitions) OnChange(fn func([]schema.Panel)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = append(d.onChange, fn)
}

// Reload re-parses the definitions directory. A parse failure keeps the
// previous definitions.
func (d *Definitions) Reload() error {
	d.logger.Info().Str("dir", d.dir).Msg("reloading panel definitions")

	panels, err := schema.ParseDir(d.dir)
	if err != nil {
		d.logger.Error().Err(err).Msg("definitions reload failed, keeping old definitions")
		return fmt.Errorf("reload definitions: %w", err)
	}

	d.mu.Lock()
	d.panels = panels
	listeners := d.onChange
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(panels)
	}

	d.logger.Info().Int("panels", len(panels)).Msg("panel definitions reloaded")
	return nil
}

// Watch starts watching the definitions directory. Changes to YAML files
// trigger automatic reload. Call Stop to end watching.
func (d *Definitions) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	d.watcher = watcher

	// Watching the directory rather than individual files survives editors
	// that save atomically via rename.
	if err := watcher.Add(d.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", d.dir, err)
	}

	go d.watchLoop()
	return nil
}

func (d *Definitions) watchLoop() {
	for {
		select {
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if err := d.Reload(); err != nil {
				d.logger.Warn().Err(err).Str("file", event.Name).Msg("hot reload skipped")
			}

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Error().Err(err).Msg("definitions watcher error")

		case <-d.stopCh:
			return
		}
	}
}

// Stop ends watching.
func (d *Definitions) Stop() {
	close(d.stopCh)
	if d.watcher != nil {
		d.watcher.Close()
	}
}

func isYAML(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
