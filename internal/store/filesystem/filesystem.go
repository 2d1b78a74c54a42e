// Package filesystem stores schedules as a file tree:
//
//	<root>/<jurisdiction>/<fiscal year>/<filing status label>.json
//
// The tree can be published as static files; each file holds one schedule's
// wire payload.
package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/store"
)

const fileExt = ".json"

// Store is rooted at a directory that is created on first write
type Store struct {
	root string
}

// New returns a store rooted at root
func New(root string) *Store {
	return &Store{root: root}
}

// Path returns the file that holds key
func (s *Store) Path(key domain.ScheduleKey) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	for _, part := range []string{key.Jurisdiction, key.FiscalYear} {
		if part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", domain.NewError(domain.KindInvalidInput, "filesystem_path",
				fmt.Sprintf("key component %q cannot be used as a path segment", part))
		}
	}
	return filepath.Join(s.root, key.Jurisdiction, key.FiscalYear, key.FilingStatus.Label()+fileExt), nil
}

// Put writes the schedule payload, creating intermediate directories. The
// file is replaced atomically; an identical existing file is left alone.
func (s *Store) Put(_ context.Context, schedule *domain.BracketSchedule) (store.Outcome, error) {
	payload, err := store.MarshalSchedule(schedule)
	if err != nil {
		return store.Written, err
	}
	path, err := s.Path(schedule.Key())
	if err != nil {
		return store.Written, err
	}

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, payload) {
		return store.Unchanged, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return store.Written, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".schedule-*")
	if err != nil {
		return store.Written, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return store.Written, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return store.Written, fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return store.Written, fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return store.Written, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return store.Written, nil
}

// Get reads and decodes the file for key
func (s *Store) Get(_ context.Context, key domain.ScheduleKey) (*domain.BracketSchedule, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.NotFound("filesystem_get", key, nil)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return store.UnmarshalSchedule(key, payload)
}

// List walks the tree and returns every key whose file name is a known
// filing status label. Unrelated files are ignored.
func (s *Store) List(_ context.Context) ([]domain.ScheduleKey, error) {
	jurisdictions, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.ScheduleKey{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", s.root, err)
	}

	keys := []domain.ScheduleKey{}
	for _, j := range jurisdictions {
		if !j.IsDir() {
			continue
		}
		years, err := os.ReadDir(filepath.Join(s.root, j.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", j.Name(), err)
		}
		for _, y := range years {
			if !y.IsDir() {
				continue
			}
			files, err := os.ReadDir(filepath.Join(s.root, j.Name(), y.Name()))
			if err != nil {
				return nil, fmt.Errorf("failed to list %s/%s: %w", j.Name(), y.Name(), err)
			}
			for _, f := range files {
				if f.IsDir() || filepath.Ext(f.Name()) != fileExt {
					continue
				}
				status := domain.FilingStatus(strings.TrimSuffix(f.Name(), fileExt))
				if !status.IsValid() {
					continue
				}
				keys = append(keys, domain.ScheduleKey{
					Jurisdiction: j.Name(),
					FiscalYear:   y.Name(),
					FilingStatus: status,
				})
			}
		}
	}
	store.SortKeys(keys)
	return keys, nil
}

func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
