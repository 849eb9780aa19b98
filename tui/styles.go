package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("39")
	colorBorder  = lipgloss.Color("238")
	colorRising  = lipgloss.Color("203")
	colorFalling = lipgloss.Color("45")
	colorFlat    = lipgloss.Color("246")
	colorDim     = lipgloss.Color("246")
	colorError   = lipgloss.Color("196")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	valueStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	errStyle   = lipgloss.NewStyle().Foreground(colorError)
	headStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)
