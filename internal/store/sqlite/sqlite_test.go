package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/rgehrsitz/taxcurve/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		st, err := New(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		return st
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "schedules.db")
	key := storetest.Key("2018", domain.MarriedFilingJointly)

	st, err := New(path)
	require.NoError(t, err)
	_, err = st.Put(ctx, storetest.Schedule(key, "0.1", "0.12", "0.37"))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())

	var digest string
	require.NoError(t, reopened.db.QueryRowContext(ctx,
		`SELECT digest FROM schedules WHERE fiscal_year = ?`, "2018").Scan(&digest))
	expected, err := store.ScheduleDigest(got)
	require.NoError(t, err)
	assert.Equal(t, expected, digest)
}
