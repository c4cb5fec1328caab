package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/bizdesk/internal/model"
)

// IDsFormatter outputs just the ids, one per line.
// Useful for piping to other commands (e.g., xargs bizdesk client rm).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// FormatClients writes client ids.
func (f *IDsFormatter) FormatClients(w io.Writer, clients []model.Client) error {
	for _, c := range clients {
		if _, err := fmt.Fprintln(w, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// FormatProjects writes project ids.
func (f *IDsFormatter) FormatProjects(w io.Writer, projects []model.Project) error {
	for _, p := range projects {
		if _, err := fmt.Fprintln(w, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// FormatNotifications writes toast ids.
func (f *IDsFormatter) FormatNotifications(w io.Writer, notifications []model.Notification) error {
	for _, n := range notifications {
		if _, err := fmt.Fprintln(w, n.ID); err != nil {
			return err
		}
	}
	return nil
}
