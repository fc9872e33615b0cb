package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	colorAccent  = lipgloss.Color("#8BE9FD")
	colorActive  = lipgloss.Color("#FF79C6")
	colorMuted   = lipgloss.Color("#6272A4")
	colorError   = lipgloss.Color("#FF5555")
	colorOK      = lipgloss.Color("#50FA7B")
	colorPending = lipgloss.Color("#F1FA8C")
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorActive).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorActive).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	PendingMarkStyle = lipgloss.NewStyle().Foreground(colorPending)

	LoadedMarkStyle = lipgloss.NewStyle().Foreground(colorOK)

	DetailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	DetailLabelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(14)

	StatusBarStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true).Padding(0, 1)
)
