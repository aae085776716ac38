package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// Theme defines the colours of styled report output.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains the lipgloss styles of the text report.
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Muted   lipgloss.Style
	Met     lipgloss.Style
	Unclear lipgloss.Style
	NotMet  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Section: lipgloss.NewStyle().
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Met: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Success),

		Unclear: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Warning),

		NotMet: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Error),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Title:   plain,
		Section: plain,
		Muted:   plain,
		Met:     plain,
		Unclear: plain,
		NotMet:  plain,
	}
}

// Status returns the style for a match status.
func (s *Styles) Status(status domain.Status) lipgloss.Style {
	switch status {
	case domain.StatusLikelyMet:
		return s.Met
	case domain.StatusUnclear:
		return s.Unclear
	default:
		return s.NotMet
	}
}

// stylesFor picks coloured styles only when w is a terminal.
func stylesFor(w io.Writer) *Styles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewStyles(DefaultTheme())
	}
	return PlainStyles()
}
