package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	labelStyle    = lipgloss.NewStyle().Width(24)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
)
