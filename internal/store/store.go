// Package store is the boundary between the offline ingestor, which writes
// canonical bracket schedules, and the online consumers that read them.
//
// Every backend persists a schedule as its wire payload (see codec.go) under
// a deterministic key, so writes are last-writer-wins and a repeated ingest
// of the same source leaves byte-identical entries behind.
package store

import (
	"context"

	"github.com/rgehrsitz/taxcurve/internal/domain"
)

// Outcome reports what a Put did to the stored entry
type Outcome int

const (
	// Written means the entry was created or its payload changed
	Written Outcome = iota
	// Unchanged means the stored payload already had the same digest
	Unchanged
)

func (o Outcome) String() string {
	if o == Unchanged {
		return "unchanged"
	}
	return "written"
}

// Reader fetches schedules for the calculator and curve sampler. A missing
// key fails with domain.ErrDataNotFound; a payload that does not decode to a
// valid schedule fails with domain.ErrInvalidSchedule.
type Reader interface {
	Get(ctx context.Context, key domain.ScheduleKey) (*domain.BracketSchedule, error)
	List(ctx context.Context) ([]domain.ScheduleKey, error)
}

// Writer persists schedules, overwriting any existing entry at the same key
type Writer interface {
	Put(ctx context.Context, schedule *domain.BracketSchedule) (Outcome, error)
}

// Store is a backend that can be both read and written
type Store interface {
	Reader
	Writer
	Close() error
}

// NotFound builds the DataNotFound error backends return for a missing key
func NotFound(op string, key domain.ScheduleKey, cause error) error {
	if cause == nil {
		return domain.NewError(domain.KindDataNotFound, op, key.String())
	}
	return domain.WrapError(domain.KindDataNotFound, op, key.String(), cause)
}
