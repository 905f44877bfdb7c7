package cli

import "github.com/charmbracelet/lipgloss"

// Shared lipgloss styles for command output.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	StreakStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	BadgeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	QuoteStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	FaintStyle  = lipgloss.NewStyle().Faint(true)
	OKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)
