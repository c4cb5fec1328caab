package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/bizdesk/internal/model"
)

// PlainFormatter formats listings as plain text, one item per line.
type PlainFormatter struct {
	opts    FormatterOptions
	client  *template.Template
	project *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
// Empty templates fall back to the built-in line layout.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	f := &PlainFormatter{opts: opts}

	var err error
	if f.client, err = parseTemplate("client", opts.ClientTemplate); err != nil {
		return nil, err
	}
	if f.project, err = parseTemplate("project", opts.ProjectTemplate); err != nil {
		return nil, err
	}
	return f, nil
}

func parseTemplate(name, text string) (*template.Template, error) {
	if text == "" {
		return nil, nil
	}
	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	return tmpl, nil
}

// FormatClients writes one line per client.
func (f *PlainFormatter) FormatClients(w io.Writer, clients []model.Client) error {
	for i := range clients {
		c := &clients[i]
		if err := f.writeLine(w, i+1, f.client, c, func(sb *strings.Builder) {
			sb.WriteString(c.Name)
			if c.Company != "" {
				sb.WriteString(" (" + c.Company + ")")
			}
			if c.Email != "" {
				sb.WriteString(" <" + c.Email + ">")
			}
			writeTags(sb, c.Tags)
			sb.WriteString(" | " + relativeTime(c.CreatedAt))
		}); err != nil {
			return err
		}
	}
	return nil
}

// FormatProjects writes one line per project.
func (f *PlainFormatter) FormatProjects(w io.Writer, projects []model.Project) error {
	for i := range projects {
		p := &projects[i]
		if err := f.writeLine(w, i+1, f.project, p, func(sb *strings.Builder) {
			sb.WriteString(fmt.Sprintf("%s [%s]", p.Name, p.Status))
			writeTags(sb, p.Tags)
			if p.Deadline != nil {
				sb.WriteString(" due " + relativeTime(*p.Deadline))
			}
			sb.WriteString(" | " + relativeTime(p.CreatedAt))
		}); err != nil {
			return err
		}
	}
	return nil
}

// FormatNotifications writes toasts as "[severity] message".
func (f *PlainFormatter) FormatNotifications(w io.Writer, notifications []model.Notification) error {
	for i := range notifications {
		n := &notifications[i]
		if err := f.writeLine(w, i+1, nil, n, func(sb *strings.Builder) {
			msg := n.Message
			if f.opts.MessageMaxLen > 0 {
				msg = n.MessageTruncated(f.opts.MessageMaxLen)
			}
			sb.WriteString(fmt.Sprintf("[%s] %s", n.Severity, msg))
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeLine renders data with tmpl when set, otherwise with fallback.
func (f *PlainFormatter) writeLine(w io.Writer, index int, tmpl *template.Template, data any, fallback func(*strings.Builder)) error {
	var sb strings.Builder

	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("[%d] ", index))
	}

	if tmpl != nil {
		if err := tmpl.Execute(&sb, data); err != nil {
			return fmt.Errorf("executing %s template: %w", tmpl.Name(), err)
		}
	} else {
		fallback(&sb)
	}

	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeTags(sb *strings.Builder, tags []string) {
	if len(tags) > 0 {
		sb.WriteString(" [" + strings.Join(tags, ", ") + "]")
	}
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":     strings.Join,
		"relTime":  relativeTime,
		"truncate": truncate,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"comma": func(n int) string {
			return humanize.Comma(int64(n))
		},
	}
}

// relativeTime returns a human-readable relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}

// truncate leaves s alone for a non-positive limit, unlike model.Truncate.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	return model.Truncate(s, maxLen)
}
