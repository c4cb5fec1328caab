package theme

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the active theme when its file in the themes directory
// is written, created or removed. A removed user theme falls back to the
// bundled theme of the same name.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	dir      string
	name     string
	onChange func(*Theme)
	done     chan struct{}
	stopped  chan struct{}
	running  bool
}

// NewWatcher creates a watcher for theme name inside dir.
func NewWatcher(dir, name string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if name == "" {
		name = DefaultThemeName
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		logger:  logger,
		watcher: fw,
		dir:     dir,
		name:    name,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

// SetChangeCallback sets the callback invoked with each reloaded theme.
func (w *Watcher) SetChangeCallback(cb func(*Theme)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = cb
}

// SetTheme switches the theme whose file triggers reloads.
func (w *Watcher) SetTheme(name string) {
	if name == "" {
		name = DefaultThemeName
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.name = name
}

// Start begins watching. A missing themes directory is not an error;
// there is nothing to reload until the user creates one.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	if w.dir == "" {
		w.mu.Unlock()
		return nil
	}
	if _, err := os.Stat(w.dir); errors.Is(err, fs.ErrNotExist) {
		w.mu.Unlock()
		w.logger.Debug("themes directory does not exist, not watching", "dir", w.dir)
		return nil
	}

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Unlock()
		return err
	}
	w.running = true
	w.mu.Unlock()

	go w.watch()
	w.logger.Debug("theme watcher started", "dir", w.dir)
	return nil
}

func (w *Watcher) watch() {
	defer close(w.stopped)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.mu.Lock()
			name := w.name
			w.mu.Unlock()

			if filepath.Base(event.Name) == name+".toml" {
				w.reload(name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload(name string) {
	t, err := Load(name, w.dir, w.logger)
	if err != nil {
		w.logger.Warn("ignoring theme change", "theme", name, "error", err)
		return
	}

	w.mu.Lock()
	cb := w.onChange
	w.mu.Unlock()

	w.logger.Info("theme reloaded", "theme", name, "bundled", t.IsDefault)
	if cb != nil {
		cb(t)
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	if running {
		w.running = false
		close(w.done)
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	if running {
		<-w.stopped
		w.logger.Debug("theme watcher stopped")
	}
	return err
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
