// Package styles provides colour themes and styling for the chat TUI.
package styles

import (
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary marks the user's questions.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Warning marks emergency answers.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#F97316"), // Arc orange
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for the header.
	Title lipgloss.Style

	// Question style for the user's turns.
	Question lipgloss.Style

	// Normal style for answer text.
	Normal lipgloss.Style

	// Bold renders <b> spans inside answers.
	Bold lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Emergency style for the hazard marker.
	Emergency lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// InputField style for the question box.
	InputField lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Question: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Emergency: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Warning),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),
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

// RenderMarkup renders answer text: <b> spans in Bold, the rest in Normal,
// with HTML entities decoded. Unbalanced tags close at the end of the text.
func (s *Styles) RenderMarkup(text string) string {
	var out strings.Builder
	bold := false
	for text != "" {
		tag := "<b>"
		if bold {
			tag = "</b>"
		}
		i := strings.Index(text, tag)
		if i < 0 {
			out.WriteString(s.span(text, bold))
			break
		}
		out.WriteString(s.span(text[:i], bold))
		text = text[i+len(tag):]
		bold = !bold
	}
	return out.String()
}

func (s *Styles) span(text string, bold bool) string {
	if text == "" {
		return ""
	}
	text = html.UnescapeString(text)
	if bold {
		return s.Bold.Render(text)
	}
	return s.Normal.Render(text)
}
