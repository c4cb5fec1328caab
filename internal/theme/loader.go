package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrThemeNotFound is returned when neither the user directory nor the
// bundled set has a theme of the requested name.
var ErrThemeNotFound = errors.New("theme not found")

// ThemesDir returns the path to the user's themes directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ThemesDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "bizdesk", "themes"), nil
}

// Load resolves a theme by name.
// Theme resolution order:
//  1. User themes directory (dir/<name>.toml)
//  2. Embedded/bundled themes
//
// A broken user theme falls back to the bundled theme of the same name.
func Load(name, dir string, logger *slog.Logger) (*Theme, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if name == "" {
		name = DefaultThemeName
	}

	if dir != "" {
		path := filepath.Join(dir, name+".toml")
		if _, err := os.Stat(path); err == nil {
			t, err := NewTheme(name, path)
			if err == nil {
				logger.Debug("loaded user theme", "name", name, "path", path)
				return t, nil
			}
			logger.Warn("failed to load user theme, trying bundled", "theme", name, "error", err)
		}
	}

	data, ok := GetEmbeddedTheme(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrThemeNotFound)
	}
	t, err := Parse(name, []byte(data))
	if err != nil {
		return nil, err
	}
	t.IsDefault = true
	logger.Debug("loaded bundled theme", "name", name)
	return t, nil
}

// ListThemes returns bundled and user theme names, sorted and deduplicated.
func ListThemes(dir string) []string {
	seen := make(map[string]bool)
	for _, name := range ListEmbeddedThemes() {
		seen[name] = true
	}

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() || filepath.Ext(name) != ".toml" {
					continue
				}
				seen[strings.TrimSuffix(name, ".toml")] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
