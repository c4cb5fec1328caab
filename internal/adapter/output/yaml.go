package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/bizdesk/internal/model"
)

// YAMLFormatter formats listings as YAML sequences.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// FormatClients writes clients as a YAML sequence.
func (f *YAMLFormatter) FormatClients(w io.Writer, clients []model.Client) error {
	return encodeYAML(w, nonNil(clients))
}

// FormatProjects writes projects as a YAML sequence.
func (f *YAMLFormatter) FormatProjects(w io.Writer, projects []model.Project) error {
	return encodeYAML(w, nonNil(projects))
}

// FormatNotifications writes notifications as a YAML sequence.
func (f *YAMLFormatter) FormatNotifications(w io.Writer, notifications []model.Notification) error {
	return encodeYAML(w, nonNil(notifications))
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
