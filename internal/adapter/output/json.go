package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/bizdesk/internal/model"
)

// JSONFormatter formats listings as indented JSON arrays.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatClients writes clients as a JSON array.
func (f *JSONFormatter) FormatClients(w io.Writer, clients []model.Client) error {
	return encodeJSON(w, nonNil(clients))
}

// FormatProjects writes projects as a JSON array.
func (f *JSONFormatter) FormatProjects(w io.Writer, projects []model.Project) error {
	return encodeJSON(w, nonNil(projects))
}

// FormatNotifications writes notifications as a JSON array.
func (f *JSONFormatter) FormatNotifications(w io.Writer, notifications []model.Notification) error {
	return encodeJSON(w, nonNil(notifications))
}

// FormatSingle writes a single value as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, v any) error {
	return encodeJSON(w, v)
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// nonNil makes empty listings encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
