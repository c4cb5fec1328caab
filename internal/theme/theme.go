package theme

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// colorRegex matches ANSI colour indexes (0-255) and #rrggbb hex colours.
var colorRegex = regexp.MustCompile(`^(#[0-9a-fA-F]{6}|[0-9]{1,3})$`)

// Palette holds lipgloss colour strings. Empty means the terminal default.
type Palette struct {
	Success string `toml:"success"`
	Error   string `toml:"error"`
	Info    string `toml:"info"`
	Accent  string `toml:"accent"`
	Muted   string `toml:"muted"`
	Key     string `toml:"key"`
}

// Icons are the toast prefixes per severity.
type Icons struct {
	Success string `toml:"success"`
	Error   string `toml:"error"`
	Info    string `toml:"info"`
}

// Theme represents a colour theme with metadata.
type Theme struct {
	Name      string    `toml:"-"` // Theme name (without .toml extension)
	Path      string    `toml:"-"` // Full path to the file (empty for bundled)
	ModTime   time.Time `toml:"-"` // Last modification time
	IsDefault bool      `toml:"-"` // True if this is a bundled theme

	Palette Palette `toml:"palette"`
	Icons   Icons   `toml:"icons"`
}

// Parse decodes theme TOML. Keys missing from data keep the default theme's values.
func Parse(name string, data []byte) (*Theme, error) {
	t := Default()
	t.Name = name
	t.IsDefault = false

	if err := toml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewTheme creates a Theme by loading a TOML file.
func NewTheme(name, path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	t, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	t.Path = path
	t.ModTime = info.ModTime()
	return t, nil
}

// Default returns the bundled default theme.
func Default() *Theme {
	data, ok := GetEmbeddedTheme(DefaultThemeName)
	t := &Theme{Name: DefaultThemeName, IsDefault: true}
	if ok {
		_ = toml.Unmarshal([]byte(data), t)
	}
	return t
}

// Validate checks every non-empty colour.
func (t *Theme) Validate() error {
	colors := map[string]string{
		"success": t.Palette.Success,
		"error":   t.Palette.Error,
		"info":    t.Palette.Info,
		"accent":  t.Palette.Accent,
		"muted":   t.Palette.Muted,
		"key":     t.Palette.Key,
	}
	for field, c := range colors {
		if c != "" && !colorRegex.MatchString(c) {
			return fmt.Errorf("theme %q: invalid %s colour %q", t.Name, field, c)
		}
	}
	return nil
}
