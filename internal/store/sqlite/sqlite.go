/*
Package sqlite provides a SQLite-backed schedule store.

TABLE:

	schedules: one row per (jurisdiction, fiscal_year, filing_status) holding
	the wire payload and its BLAKE3 digest. Writes are upserts, so the last
	ingest of a key wins.

CONCURRENCY:

	Uses sync.RWMutex around writes so the digest comparison and the upsert
	happen together. Reads go straight to the database.

USAGE:

	st, err := sqlite.New("./schedules.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer st.Close()

Use ":memory:" for a throwaway database.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/store"
)

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (creating if needed) the database at dbPath and migrates it.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schedules (
		jurisdiction TEXT NOT NULL,
		fiscal_year TEXT NOT NULL,
		filing_status TEXT NOT NULL,
		payload TEXT NOT NULL,
		digest TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (jurisdiction, fiscal_year, filing_status)
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_year
		ON schedules(fiscal_year);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put upserts the schedule. When the stored digest already matches the row
// is not touched, so updated_at records the last real change.
func (s *Store) Put(ctx context.Context, schedule *domain.BracketSchedule) (store.Outcome, error) {
	payload, err := store.MarshalSchedule(schedule)
	if err != nil {
		return store.Written, err
	}
	key := schedule.Key()
	if err := key.Validate(); err != nil {
		return store.Written, err
	}
	digest := store.Digest(payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing string
	err = s.db.QueryRowContext(ctx,
		`SELECT digest FROM schedules WHERE jurisdiction = ? AND fiscal_year = ? AND filing_status = ?`,
		key.Jurisdiction, key.FiscalYear, string(key.FilingStatus),
	).Scan(&existing)
	switch {
	case err == nil && existing == digest:
		return store.Unchanged, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return store.Written, fmt.Errorf("failed to read digest for %s: %w", key, err)
	}

	query := `
		INSERT INTO schedules (jurisdiction, fiscal_year, filing_status, payload, digest, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(jurisdiction, fiscal_year, filing_status) DO UPDATE SET
			payload = excluded.payload,
			digest = excluded.digest,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		key.Jurisdiction,
		key.FiscalYear,
		string(key.FilingStatus),
		string(payload),
		digest,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return store.Written, fmt.Errorf("failed to save schedule %s: %w", key, err)
	}
	return store.Written, nil
}

// Get decodes the stored payload for key
func (s *Store) Get(ctx context.Context, key domain.ScheduleKey) (*domain.BracketSchedule, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM schedules WHERE jurisdiction = ? AND fiscal_year = ? AND filing_status = ?`,
		key.Jurisdiction, key.FiscalYear, string(key.FilingStatus),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, store.NotFound("sqlite_get", key, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule %s: %w", key, err)
	}
	return store.UnmarshalSchedule(key, []byte(payload))
}

// List returns every stored key
func (s *Store) List(ctx context.Context) ([]domain.ScheduleKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT jurisdiction, fiscal_year, filing_status FROM schedules`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	keys := []domain.ScheduleKey{}
	for rows.Next() {
		var key domain.ScheduleKey
		var status string
		if err := rows.Scan(&key.Jurisdiction, &key.FiscalYear, &status); err != nil {
			return nil, fmt.Errorf("failed to scan schedule key: %w", err)
		}
		key.FilingStatus = domain.FilingStatus(status)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	store.SortKeys(keys)
	return keys, nil
}

var _ store.Store = (*Store)(nil)
