package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/taxcurve/internal/output"
)

// Shared with the console formatter so both surfaces look alike
var (
	ColorPrimary = output.ColorPrimary
	ColorAccent  = output.ColorAccent
	ColorMuted   = output.ColorMuted
	ColorBorder  = output.ColorBorder
	ColorDanger  = lipgloss.Color("#FF5F87")

	TitleStyle          = output.TitleStyle
	SubtitleStyle       = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	StatusBarStyle      = lipgloss.NewStyle().Foreground(ColorMuted).Padding(0, 1)
	StatusKeyStyle      = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	BorderStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder).Padding(0, 1)
	SelectedItemStyle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	UnselectedItemStyle = lipgloss.NewStyle()
	ErrorStyle          = lipgloss.NewStyle().Foreground(ColorDanger).Bold(true)
)
