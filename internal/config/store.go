package config

import (
	"fmt"

	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/rgehrsitz/taxcurve/internal/store/filesystem"
	"github.com/rgehrsitz/taxcurve/internal/store/memory"
	"github.com/rgehrsitz/taxcurve/internal/store/sqlite"
)

// OpenStore opens the configured backend
func (sc StoreConfig) OpenStore() (store.Store, error) {
	switch sc.Backend {
	case BackendFilesystem:
		return filesystem.New(sc.Path), nil
	case BackendSQLite:
		st, err := sqlite.New(sc.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store %s: %w", sc.Path, err)
		}
		return st, nil
	case BackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}
