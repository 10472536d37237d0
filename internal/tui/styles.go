package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor  = lipgloss.Color("#7C3AED")
	positiveColor = lipgloss.Color("#10B981")
	negativeColor = lipgloss.Color("#EF4444")
	mutedColor    = lipgloss.Color("#6B7280")
	borderColor   = lipgloss.Color("#374151")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle  = lipgloss.NewStyle().Foreground(negativeColor)
	helpStyle   = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
)

func labelStyle(label string) lipgloss.Style {
	switch label {
	case "POSITIVE":
		return lipgloss.NewStyle().Foreground(positiveColor)
	case "NEGATIVE":
		return lipgloss.NewStyle().Foreground(negativeColor)
	default:
		return lipgloss.NewStyle().Foreground(mutedColor)
	}
}
