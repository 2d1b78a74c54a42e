// Package storetest holds the behaviour every store backend must share
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Key returns a schedule key in the default jurisdiction
func Key(year string, status domain.FilingStatus) domain.ScheduleKey {
	return domain.ScheduleKey{Jurisdiction: domain.DefaultJurisdiction, FiscalYear: year, FilingStatus: status}
}

// Schedule builds {100: low, 300: mid, inf: top} for key
func Schedule(key domain.ScheduleKey, low, mid, top string) *domain.BracketSchedule {
	return domain.MustBracketSchedule(key, []domain.BracketThreshold{
		{Upper: domain.Finite(decimal.NewFromInt(100)), Rate: decimal.RequireFromString(low)},
		{Upper: domain.Finite(decimal.NewFromInt(300)), Rate: decimal.RequireFromString(mid)},
		{Upper: domain.Unbounded(), Rate: decimal.RequireFromString(top)},
	})
}

// Run exercises put/get/list/overwrite semantics against a fresh store
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("get missing is data not found", func(t *testing.T) {
		st := open(t)
		_, err := st.Get(context.Background(), Key("1913", domain.SingleFiler))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDataNotFound), err.Error())
	})

	t.Run("put then get", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()
		key := Key("2021", domain.HeadOfHousehold)

		outcome, err := st.Put(ctx, Schedule(key, "0.1", "0.2", "0.3"))
		require.NoError(t, err)
		assert.Equal(t, store.Written, outcome)

		got, err := st.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, key, got.Key())
		require.Equal(t, 3, got.Len())
		assert.True(t, got.At(1).Rate.Equal(decimal.RequireFromString("0.2")))
		assert.True(t, got.At(2).Upper.IsOpen())
	})

	t.Run("same payload is unchanged, new payload overwrites", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()
		key := Key("2021", domain.SingleFiler)

		_, err := st.Put(ctx, Schedule(key, "0.1", "0.2", "0.3"))
		require.NoError(t, err)
		outcome, err := st.Put(ctx, Schedule(key, "0.1", "0.2", "0.3"))
		require.NoError(t, err)
		assert.Equal(t, store.Unchanged, outcome)

		outcome, err = st.Put(ctx, Schedule(key, "0.1", "0.25", "0.3"))
		require.NoError(t, err)
		assert.Equal(t, store.Written, outcome)

		got, err := st.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, got.At(1).Rate.Equal(decimal.RequireFromString("0.25")))
	})

	t.Run("list is sorted", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()

		empty, err := st.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, key := range []domain.ScheduleKey{
			Key("2021", domain.HeadOfHousehold),
			Key("2020", domain.SingleFiler),
			Key("2021", domain.SingleFiler),
		} {
			_, err := st.Put(ctx, Schedule(key, "0.1", "0.2", "0.3"))
			require.NoError(t, err)
		}

		keys, err := st.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.ScheduleKey{
			Key("2020", domain.SingleFiler),
			Key("2021", domain.SingleFiler),
			Key("2021", domain.HeadOfHousehold),
		}, keys)
	})

	t.Run("invalid schedule is rejected", func(t *testing.T) {
		st := open(t)
		_, err := st.Put(context.Background(), &domain.BracketSchedule{})
		assert.True(t, errors.Is(err, domain.ErrInvalidSchedule))
	})
}
