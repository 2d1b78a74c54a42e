package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/taxcurve/internal/output"
)

const visibleKeys = 8

// View renders the current state of the explorer
func (m Model) View() string {
	sections := []string{
		TitleStyle.Render("taxcurve explorer"),
		m.renderKeyList(),
		m.income.View(),
	}

	if m.inputErr != nil {
		sections = append(sections, ErrorStyle.Render(m.inputErr.Error()))
	}
	if m.err != nil {
		sections = append(sections, ErrorStyle.Render("Error: "+m.err.Error()))
	}

	switch {
	case m.loading:
		sections = append(sections, SubtitleStyle.Render("Loading..."))
	case m.schedule != nil:
		sections = append(sections, m.renderPane())
	}

	sections = append(sections, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderKeyList shows a window of keys around the cursor
func (m Model) renderKeyList() string {
	if len(m.keys) == 0 {
		if m.loading {
			return SubtitleStyle.Render("Reading store...")
		}
		return SubtitleStyle.Render("No schedules stored. Run taxcurve ingest first.")
	}

	start := m.cursor - visibleKeys/2
	if start > len(m.keys)-visibleKeys {
		start = len(m.keys) - visibleKeys
	}
	if start < 0 {
		start = 0
	}
	end := start + visibleKeys
	if end > len(m.keys) {
		end = len(m.keys)
	}

	var lines []string
	for i := start; i < end; i++ {
		k := m.keys[i]
		label := fmt.Sprintf("%s %s, %s", k.Jurisdiction, k.FiscalYear, k.FilingStatus)
		if i == m.cursor {
			lines = append(lines, SelectedItemStyle.Render("▸ "+label))
		} else {
			lines = append(lines, UnselectedItemStyle.Render("  "+label))
		}
	}
	lines = append(lines, SubtitleStyle.Render(fmt.Sprintf("%d of %d", m.cursor+1, len(m.keys))))
	return BorderStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderPane() string {
	formatter := &output.ConsoleFormatter{ChartWidth: m.width - 4, ChartHeight: m.height / 3}

	var content string
	var err error
	switch m.pane {
	case PaneCurve:
		if len(m.curve) == 0 {
			return SubtitleStyle.Render("Type an income to scale the curve")
		}
		content, err = formatter.Curve(m.schedule.Key(), m.curve)
	default:
		if m.summary == nil {
			content, err = formatter.Schedule(m.schedule)
		} else {
			content, err = formatter.Summary(m.summary)
		}
	}
	if err != nil {
		return ErrorStyle.Render(err.Error())
	}
	return content
}

func (m Model) renderStatusBar() string {
	bindings := []key.Binding{keys.Up, keys.Down, keys.Toggle, keys.Quit}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = StatusKeyStyle.Render(h.Key) + " " + h.Desc
	}
	return StatusBarStyle.Render(strings.Join(parts, "  •  "))
}
