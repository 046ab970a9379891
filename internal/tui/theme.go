package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds accent-color-derived styles.
type Theme struct {
	accentStyle lipgloss.Style // header bar
	borderStyle lipgloss.Style // event log border
}

// NewTheme creates a Theme from a hex accent color string (e.g. "#7D56F4").
// If accentColor is empty, the default accent color is used.
func NewTheme(accentColor string) Theme {
	color := defaultAccentColor
	if accentColor != "" {
		color = accentColor
	}
	c := lipgloss.Color(color)
	return Theme{
		accentStyle: lipgloss.NewStyle().
			Background(c).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true),
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c),
	}
}

// HeaderStyle returns the style for the header bar.
func (t Theme) HeaderStyle() lipgloss.Style { return t.accentStyle }

// LogBorderStyle returns the style drawn around the event log panel.
func (t Theme) LogBorderStyle() lipgloss.Style { return t.borderStyle }
