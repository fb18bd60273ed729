package prompt

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorError   = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	keyStyle = lipgloss.NewStyle().
			Bold(true).
			Width(24)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			PaddingLeft(24)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)
)
