// Package memory is an in-process schedule store for tests and for serving
// a bundle without touching disk.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/store"
)

// Store keeps wire payloads in a map
type Store struct {
	mu       sync.RWMutex
	payloads map[domain.ScheduleKey][]byte
}

func New() *Store {
	return &Store{payloads: make(map[domain.ScheduleKey][]byte)}
}

// Put stores the schedule's payload, overwriting any previous entry
func (m *Store) Put(_ context.Context, schedule *domain.BracketSchedule) (store.Outcome, error) {
	payload, err := store.MarshalSchedule(schedule)
	if err != nil {
		return store.Written, err
	}
	key := schedule.Key()
	if err := key.Validate(); err != nil {
		return store.Written, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.payloads[key]; ok && bytes.Equal(existing, payload) {
		return store.Unchanged, nil
	}
	m.payloads[key] = payload
	return store.Written, nil
}

// Get decodes the stored payload for key
func (m *Store) Get(_ context.Context, key domain.ScheduleKey) (*domain.BracketSchedule, error) {
	m.mu.RLock()
	payload, ok := m.payloads[key]
	m.mu.RUnlock()
	if !ok {
		return nil, store.NotFound("memory_get", key, nil)
	}
	return store.UnmarshalSchedule(key, payload)
}

// List returns every stored key in sorted order
func (m *Store) List(_ context.Context) ([]domain.ScheduleKey, error) {
	m.mu.RLock()
	keys := make([]domain.ScheduleKey, 0, len(m.payloads))
	for k := range m.payloads {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	store.SortKeys(keys)
	return keys, nil
}

func (m *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
