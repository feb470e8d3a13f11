// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// Theme is the colour palette the styles are built from.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#E4572E"), // Canvas red
		Secondary:  lipgloss.Color("#4EA8DE"),
		Background: lipgloss.Color("#1E1E2E"),
		Foreground: lipgloss.Color("#E6E6E6"),
		Muted:      lipgloss.Color("#7F8491"),
		Success:    lipgloss.Color("#8BD17C"),
		Warning:    lipgloss.Color("#F2C14E"),
		Error:      lipgloss.Color("#F25F5C"),
		Border:     lipgloss.Color("#454A59"),
	}
}

// Confidence thresholds for colouring judged sources.
const (
	confidentAt = 70
	doubtfulAt  = 40
)

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Question and Answer style the chat transcript.
	Question lipgloss.Style
	Answer   lipgloss.Style

	// Badge labels the active source; SmartBadge marks smart mode.
	Badge      lipgloss.Style
	SmartBadge lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	badge := lipgloss.NewStyle().
		Foreground(theme.Background).
		Background(theme.Secondary).
		Padding(0, 1)

	return &Styles{
		theme: theme,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Normal:   lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),

		Question: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Answer:   lipgloss.NewStyle().Foreground(theme.Foreground),

		Badge:      badge,
		SmartBadge: badge.Background(theme.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(theme.Muted),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ModeBadge renders the ask mode label. Smart mode stands out because it
// spends LLM calls on every candidate document.
func (s *Styles) ModeBadge(mode domain.AskMode) string {
	if mode == domain.AskModeSmart {
		return s.SmartBadge.Render(string(mode))
	}
	return s.Badge.Render(string(mode))
}

// Confidence returns the style for a judged source's confidence percentage.
func (s *Styles) Confidence(pct int) lipgloss.Style {
	switch {
	case pct >= confidentAt:
		return s.Success
	case pct >= doubtfulAt:
		return s.Warning
	default:
		return s.Muted
	}
}
