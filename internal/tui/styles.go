package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sells-group/intake-cli/internal/model"
)

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Cursor   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Label    lipgloss.Style
	Help     lipgloss.Style
	Border   lipgloss.Style
}

// DefaultStyles returns the queue's default palette.
func DefaultStyles() *Styles {
	var (
		primary   = lipgloss.Color("#7C3AED")
		secondary = lipgloss.Color("#06B6D4")
		fg        = lipgloss.Color("#CDD6F4")
		muted     = lipgloss.Color("#6C7086")
		border    = lipgloss.Color("#45475A")
	)
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(secondary),
		Normal:   lipgloss.NewStyle().Foreground(fg),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Cursor:   lipgloss.NewStyle().Bold(true).Foreground(fg).Background(primary),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Label:    lipgloss.NewStyle().Bold(true).Foreground(muted).Width(16),
		Help:     lipgloss.NewStyle().Foreground(muted),
		Border:   lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
	}
}

// StatusStyle colours a record status.
func (s *Styles) StatusStyle(st model.Status) lipgloss.Style {
	switch st {
	case model.StatusApproved:
		return s.Success
	case model.StatusRejected:
		return s.Error
	case model.StatusPromoted:
		return s.Subtitle
	}
	return s.Warning
}
