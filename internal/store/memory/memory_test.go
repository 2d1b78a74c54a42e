package memory

import (
	"testing"

	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/rgehrsitz/taxcurve/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New()
	})
}
