package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[toast]\nduration = \"3s\"\n"), 0644))

	w, err := NewWatcher(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		last time.Duration
	)
	w.SetChangeCallback(func(cfg *Config) {
		mu.Lock()
		defer mu.Unlock()
		last = cfg.Toast.Duration.Duration()
	})

	require.NoError(t, w.Start())
	defer w.Stop()

	// Invalid content is ignored.
	require.NoError(t, os.WriteFile(path, []byte("[toast]\nduration = \"0s\"\n"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("[toast]\nduration = \"8s\"\n"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last == 8*time.Second
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.toml"), nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())

	assert.NoError(t, w.Stop())
}
