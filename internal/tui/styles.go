package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/theme"
)

// styles are the lipgloss styles derived from a theme.
type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	muted  lipgloss.Style
	key    lipgloss.Style
	toasts map[model.Severity]lipgloss.Style
	icons  map[model.Severity]string
}

func fg(s lipgloss.Style, color string) lipgloss.Style {
	if color == "" {
		return s
	}
	return s.Foreground(lipgloss.Color(color))
}

func newStyles(t *theme.Theme) styles {
	if t == nil {
		t = theme.Default()
	}
	p := t.Palette

	return styles{
		title: fg(lipgloss.NewStyle().Bold(true), p.Accent),
		label: fg(lipgloss.NewStyle(), p.Muted),
		muted: fg(lipgloss.NewStyle(), p.Muted),
		key:   fg(lipgloss.NewStyle(), p.Key),
		toasts: map[model.Severity]lipgloss.Style{
			model.SeveritySuccess: fg(lipgloss.NewStyle(), p.Success),
			model.SeverityError:   fg(lipgloss.NewStyle().Bold(true), p.Error),
			model.SeverityInfo:    fg(lipgloss.NewStyle(), p.Info),
		},
		icons: map[model.Severity]string{
			model.SeveritySuccess: t.Icons.Success,
			model.SeverityError:   t.Icons.Error,
			model.SeverityInfo:    t.Icons.Info,
		},
	}
}

// toastPrefix returns the icon and a separating space, or nothing.
func (s styles) toastPrefix(sev model.Severity) string {
	if icon := s.icons[sev]; icon != "" {
		return icon + " "
	}
	return ""
}
