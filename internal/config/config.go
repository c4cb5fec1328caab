// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultToastDuration = 3 * time.Second
	DefaultMaxVisible    = 5
	DefaultOutputFormat  = "plain"
	DefaultTheme         = "default"
	DefaultClientTmpl    = "{{.Name}}{{if .Company}} ({{.Company}}){{end}}{{if .Email}} <{{.Email}}>{{end}}{{if .Tags}} [{{join .Tags \", \"}}]{{end}} | {{relTime .CreatedAt}}"
	DefaultProjectTmpl   = "{{.Name}} [{{.Status}}]{{if .Tags}} [{{join .Tags \", \"}}]{{end}} | {{relTime .CreatedAt}}"
)

// Output formats.
const (
	FormatPlain = "plain"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the bizdesk configuration.
type Config struct {
	Toast     ToastConfig     `toml:"toast"`
	Store     StoreConfig     `toml:"store"`
	Session   SessionConfig   `toml:"session"`
	Output    OutputConfig    `toml:"output"`
	Templates TemplatesConfig `toml:"templates"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	TUI       TUIConfig       `toml:"tui"`
}

// ToastConfig holds transient notification settings.
type ToastConfig struct {
	Duration   Duration `toml:"duration"`    // e.g. "3s" or 3000
	MaxVisible int      `toml:"max_visible"` // Toasts drawn at once by the TUI
}

// StoreConfig holds document store settings.
type StoreConfig struct {
	Path string `toml:"path"` // Empty = default data path
}

// SessionConfig controls how the signed-in identity is remembered.
type SessionConfig struct {
	Remember   bool   `toml:"remember"`    // Persist the session in the keyring
	KeyringDir string `toml:"keyring_dir"` // File backend fallback directory
}

// OutputConfig holds CLI output options.
type OutputConfig struct {
	Format string `toml:"format"` // plain, json, yaml
}

// TemplatesConfig holds plain output templates.
type TemplatesConfig struct {
	Client  string `toml:"client"`
	Project string `toml:"project"`
}

// ClipboardConfig holds TUI clipboard settings.
type ClipboardConfig struct {
	Command string `toml:"command"` // Empty = auto-detect wl-copy, xclip or xsel
}

// TUIConfig holds terminal interface settings.
type TUIConfig struct {
	Theme string `toml:"theme"` // Bundled or user theme name
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Toast: ToastConfig{
			Duration:   Duration(DefaultToastDuration),
			MaxVisible: DefaultMaxVisible,
		},
		Store: StoreConfig{
			Path: "",
		},
		Session: SessionConfig{
			Remember:   true,
			KeyringDir: "",
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Templates: TemplatesConfig{
			Client:  DefaultClientTmpl,
			Project: DefaultProjectTmpl,
		},
		TUI: TUIConfig{
			Theme: DefaultTheme,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "bizdesk", "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "bizdesk")
}

// DatabasePath returns the configured database path, or the default one.
func (c *Config) DatabasePath() string {
	if c.Store.Path != "" {
		return expandPath(c.Store.Path)
	}
	return filepath.Join(DataPath(), "bizdesk.db")
}

// KeyringDir returns the directory used by the file keyring backend.
func (c *Config) KeyringDir() string {
	if c.Session.KeyringDir != "" {
		return expandPath(c.Session.KeyringDir)
	}
	return filepath.Join(DataPath(), "keyring")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Toast.Duration.Duration() <= 0 {
		return fmt.Errorf("%w: toast duration must be positive, got %s", ErrInvalidConfig, c.Toast.Duration.Duration())
	}
	if c.Toast.MaxVisible < 1 || c.Toast.MaxVisible > 20 {
		return fmt.Errorf("%w: max_visible must be between 1 and 20, got %d", ErrInvalidConfig, c.Toast.MaxVisible)
	}

	switch c.Output.Format {
	case FormatPlain, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: invalid output format %q, must be one of: plain, json, yaml", ErrInvalidConfig, c.Output.Format)
	}

	return nil
}

// GetTemplate returns the plain template for the given document kind.
func (c *Config) GetTemplate(name string) string {
	switch name {
	case "client", "clients":
		return c.Templates.Client
	case "project", "projects":
		return c.Templates.Project
	default:
		return ""
	}
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
