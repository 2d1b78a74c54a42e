package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/store"
)

// KeysLoadedMsg carries the stored keys in display order
type KeysLoadedMsg struct {
	Keys []domain.ScheduleKey
}

// ScheduleLoadedMsg carries the schedule for the selected key
type ScheduleLoadedMsg struct {
	Schedule *domain.BracketSchedule
}

// ErrorMsg reports a failed load
type ErrorMsg struct {
	Err error
}

func loadKeysCmd(ctx context.Context, reader store.Reader) tea.Cmd {
	return func() tea.Msg {
		keys, err := reader.List(ctx)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		store.SortKeys(keys)
		return KeysLoadedMsg{Keys: keys}
	}
}

func loadScheduleCmd(ctx context.Context, reader store.Reader, key domain.ScheduleKey) tea.Cmd {
	return func() tea.Msg {
		schedule, err := reader.Get(ctx, key)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ScheduleLoadedMsg{Schedule: schedule}
	}
}
