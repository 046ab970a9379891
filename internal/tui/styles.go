// Package tui provides the bubbletea + lipgloss terminal dashboard for the
// detection service controller.
package tui

import "github.com/charmbracelet/lipgloss"

// defaultAccentColor is the default accent color (indigo).
const defaultAccentColor = "#7D56F4"

// Color palette.
var (
	colorWhite = lipgloss.Color("#FAFAFA")
	colorGray  = lipgloss.Color("#888888")
	colorGreen = lipgloss.Color("#6BCB77")
	colorRed   = lipgloss.Color("#FF6B6B")
)

// Styles shared across the dashboard. Accent-dependent styles live on Theme
// and are computed from the configured accent color at creation.
var (
	footerStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	timestampStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	runningStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	stoppedStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(colorGreen)

	errStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	keyEnabledStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	keyDisabledStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				Strikethrough(true)
)
