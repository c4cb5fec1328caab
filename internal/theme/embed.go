package theme

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed themes/*.toml
var bundled embed.FS

// DefaultThemeName is the name of the built-in default theme.
const DefaultThemeName = "default"

// BundledThemes lists the names of the embedded themes.
var BundledThemes = []string{"default", "minimal", "catppuccin"}

// GetEmbeddedTheme returns the TOML source of a bundled theme.
func GetEmbeddedTheme(name string) (string, bool) {
	data, err := bundled.ReadFile(path.Join("themes", name+".toml"))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// ListEmbeddedThemes returns the names found in the embedded filesystem.
func ListEmbeddedThemes() []string {
	matches, err := fs.Glob(bundled, "themes/*.toml")
	if err != nil || len(matches) == 0 {
		return BundledThemes
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = strings.TrimSuffix(path.Base(m), ".toml")
	}
	return names
}

// IsEmbeddedTheme checks if a theme name is bundled.
func IsEmbeddedTheme(name string) bool {
	_, ok := GetEmbeddedTheme(name)
	return ok
}
