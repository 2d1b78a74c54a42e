package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/taxcurve/internal/calculation"
	"github.com/shopspring/decimal"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case KeysLoadedMsg:
		m.keys = msg.Keys
		m.cursor = 0
		if len(m.keys) == 0 {
			m.loading = false
			return m, nil
		}
		return m, loadScheduleCmd(m.ctx, m.reader, m.keys[0])

	case ScheduleLoadedMsg:
		// a slow load for a key the cursor already left
		if selected, ok := m.Selected(); !ok || selected != msg.Schedule.Key() {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.schedule = msg.Schedule
		m.recompute()
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.income, cmd = m.income.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		return m.moveCursor(-1)

	case key.Matches(msg, keys.Down):
		return m.moveCursor(1)

	case key.Matches(msg, keys.Toggle):
		if m.pane == PaneBreakdown {
			m.pane = PaneCurve
		} else {
			m.pane = PaneBreakdown
		}
		return m, nil
	}

	before := m.income.Value()
	var cmd tea.Cmd
	m.income, cmd = m.income.Update(msg)
	if m.income.Value() != before {
		m.recompute()
	}
	return m, cmd
}

func (m Model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	if len(m.keys) == 0 {
		return m, nil
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.keys) {
		return m, nil
	}
	m.cursor = next
	m.schedule = nil
	m.summary = nil
	m.curve = nil
	m.loading = true
	return m, loadScheduleCmd(m.ctx, m.reader, m.keys[m.cursor])
}

// recompute refreshes the breakdown and curve from the typed income. The
// curve is drawn up to the default ceiling, stretched to cover the income.
func (m *Model) recompute() {
	m.summary, m.curve, m.inputErr = nil, nil, nil
	if m.schedule == nil {
		return
	}

	income := decimal.Zero
	raw := strings.ReplaceAll(strings.TrimSpace(m.income.Value()), ",", "")
	if raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			m.inputErr = fmt.Errorf("%q is not a number", m.income.Value())
			return
		}
		summary, err := calculation.Summarize(v, m.schedule)
		if err != nil {
			m.inputErr = err
			return
		}
		m.summary = summary
		income = v
	}

	ceiling, err := calculation.DefaultCeiling(m.schedule, m.sampling.CeilingBuffer)
	if err != nil {
		// flat schedule, nothing to scale from but the income
		ceiling = income
	}
	if income.GreaterThan(ceiling) {
		ceiling = income
	}
	if !ceiling.IsPositive() {
		return
	}
	points, err := calculation.SampleCurve(ceiling, m.schedule, m.sampling.PointsPerBracket)
	if err != nil {
		m.inputErr = err
		return
	}
	m.curve = points
}
