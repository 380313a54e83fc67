package ui

import "github.com/charmbracelet/lipgloss"

const (
	accentColor = lipgloss.Color("#FF8C42")
	softColor   = lipgloss.Color("#FFB84D")
	mutedColor  = lipgloss.Color("#6B7280")
	errorColor  = lipgloss.Color("#FF4757")
	textColor   = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(textColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(softColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 2)

	ErrorBoxStyle = BoxStyle.
			BorderForeground(errorColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(accentColor)
)
