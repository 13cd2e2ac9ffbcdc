package tui

import "github.com/charmbracelet/lipgloss"

// Styles for the sidebar table.
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#8B1E3F")).
			Bold(true)

	PlayerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	HealthStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E84A5F"))

	LostHealthStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4A4A4A"))

	StunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A29BFE")).
			Italic(true)

	ItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C8B88A"))

	LiveShellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	BlankShellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#74B9FF")).
			Bold(true)
)

// Styles for the action pane and log lines.
var (
	TurnInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)
