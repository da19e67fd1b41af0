// Package styles holds the colour palette and lipgloss styles of the HUD.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the HUD palette.
type Theme struct {
	Accent  lipgloss.Color // titles and the selection bar
	Link    lipgloss.Color // note paths
	Text    lipgloss.Color
	Muted   lipgloss.Color // previews, scores and help
	Match   lipgloss.Color // query matches inside previews
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Border  lipgloss.Color
	Bar     lipgloss.Color // status bar background
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#F5A97F"),
		Link:    lipgloss.Color("#8BD5CA"),
		Text:    lipgloss.Color("#CAD3F5"),
		Muted:   lipgloss.Color("#6E738D"),
		Match:   lipgloss.Color("#EED49F"),
		Success: lipgloss.Color("#A6DA95"),
		Warning: lipgloss.Color("#F5BDE6"),
		Error:   lipgloss.Color("#ED8796"),
		Border:  lipgloss.Color("#494D64"),
		Bar:     lipgloss.Color("#1E2030"),
	}
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Match      lipgloss.Style
	Path       lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles builds styles from theme. A nil theme means DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Text),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Bar).
			Background(theme.Accent),

		Match: lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(theme.Match),

		Path: lipgloss.NewStyle().
			Italic(true).
			Foreground(theme.Link),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles over the default palette.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
