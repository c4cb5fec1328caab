package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file and reloads it on change.
// Invalid files are logged and ignored; the last good config stays in effect.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	path     string
	onChange func(*Config)
	done     chan struct{}
	running  bool
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = ConfigPath()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		logger:  logger,
		watcher: fw,
		path:    path,
		done:    make(chan struct{}),
	}, nil
}

// SetChangeCallback sets the callback invoked with each successfully reloaded config.
func (w *Watcher) SetChangeCallback(cb func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = cb
}

// Start begins watching. The parent directory is watched so that editors
// which replace the file via rename are still noticed.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.watch()
	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

func (w *Watcher) watch() {
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.logger.Warn("ignoring invalid config change", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	cb := w.onChange
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)
	if cb != nil {
		cb(cfg)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	return w.watcher.Close()
}
