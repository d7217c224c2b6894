package render

import "github.com/charmbracelet/lipgloss"

var (
	userPrefixStyle      = lipgloss.NewStyle().Faint(true).Bold(true)
	userIndentStyle      = lipgloss.NewStyle().Faint(true)
	assistantPrefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	assistantIndentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	dimStyle             = lipgloss.NewStyle().Faint(true)
	codeHeaderStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Faint(true)
	codeBodyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4d4d8"))
	commandStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	mermaidHeaderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0ea5e9")).Faint(true)
	thinkingStyle        = lipgloss.NewStyle().Faint(true).Italic(true)
	tableHeaderStyle     = lipgloss.NewStyle().Bold(true)
)
