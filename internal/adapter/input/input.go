// Package input provides import adapters for client records.
package input

import (
	"context"
	"io"
	"strings"

	"github.com/jmylchreest/bizdesk/internal/directory"
)

// InputAdapter reads client records from a source.
type InputAdapter interface {
	// Name returns the adapter identifier (e.g., "json", "yaml").
	Name() string

	// Import reads client records from the source.
	Import(ctx context.Context) ([]directory.ClientInput, error)
}

// DetectFormat guesses the format of data from its first significant byte.
func DetectFormat(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return "json"
	}
	return "yaml"
}

// NewAdapter creates an InputAdapter reading r in the given format.
// An empty format is detected from the input.
func NewAdapter(format string, r io.Reader) (InputAdapter, error) {
	switch format {
	case "", "json", "yaml":
		return NewReaderAdapter(format, r), nil
	default:
		return nil, &AdapterError{
			Source:  format,
			Message: "unknown import format",
		}
	}
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
