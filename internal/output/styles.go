package output

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorAccent  = lipgloss.Color("#F25D94")
	ColorMuted   = lipgloss.Color("#626262")
	ColorBorder  = lipgloss.Color("#3C3C3C")
)

var (
	TitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	LabelStyle       = lipgloss.NewStyle().Foreground(ColorMuted)
	TotalStyle       = lipgloss.NewStyle().Bold(true)
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Padding(0, 1)
	TableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	TableNumberStyle = TableCellStyle.Align(lipgloss.Right)
	ChartLineStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
)
