// Package tui is an interactive explorer for stored schedules: pick a
// schedule, type an income, and see its breakdown or liability curve.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/taxcurve/internal/config"
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/store"
)

// Pane selects what is drawn under the income input
type Pane int

const (
	PaneBreakdown Pane = iota
	PaneCurve
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous schedule")),
	Down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next schedule")),
	Toggle: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "breakdown/curve")),
	Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

// Model represents the explorer state
type Model struct {
	ctx      context.Context
	reader   store.Reader
	sampling config.SamplingConfig

	width  int
	height int

	keys     []domain.ScheduleKey
	cursor   int
	schedule *domain.BracketSchedule
	income   textinput.Model
	pane     Pane

	summary *domain.LiabilitySummary
	curve   []domain.CurvePoint

	// inputErr is a problem with the typed income; err is fatal to the view
	inputErr error
	err      error
	loading  bool
}

// NewModel creates an explorer reading schedules from reader
func NewModel(ctx context.Context, reader store.Reader, sampling config.SamplingConfig) Model {
	ti := textinput.New()
	ti.Placeholder = "e.g., 85000"
	ti.Prompt = "Income: $"
	ti.CharLimit = 15
	ti.Width = 20
	ti.Focus()

	return Model{
		ctx:      ctx,
		reader:   reader,
		sampling: sampling,
		width:    80,
		height:   24,
		income:   ti,
		loading:  true,
	}
}

// Init loads the key list (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, loadKeysCmd(m.ctx, m.reader))
}

// Selected returns the key under the cursor, if any
func (m Model) Selected() (domain.ScheduleKey, bool) {
	if len(m.keys) == 0 {
		return domain.ScheduleKey{}, false
	}
	return m.keys[m.cursor], true
}

// Summary returns the breakdown for the current income, nil before one is typed
func (m Model) Summary() *domain.LiabilitySummary { return m.summary }

// Curve returns the sampled curve for the current schedule
func (m Model) Curve() []domain.CurvePoint { return m.curve }
