// Package output provides output formatters for clients, projects and toasts.
package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/bizdesk/internal/model"
)

// Formatter formats directory listings and notifications for output.
type Formatter interface {
	FormatClients(w io.Writer, clients []model.Client) error
	FormatProjects(w io.Writer, projects []model.Project) error
	FormatNotifications(w io.Writer, notifications []model.Notification) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatPlain, "":
		return NewPlainFormatter(opts)
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	ClientTemplate  string // Template for one client line (plain format)
	ProjectTemplate string // Template for one project line (plain format)
	ShowIndex       bool   // Show 1-based index prefix
	MessageMaxLen   int    // Maximum toast message length (0 = unlimited)
}

// DefaultFormatterOptions returns defaults for plain output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:     false,
		MessageMaxLen: 120,
	}
}
