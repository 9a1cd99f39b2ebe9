package chat

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	replyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

const rule = "=================================================="
