package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OpenBoundToken is the wire spelling of the unbounded top bracket edge.
// JSON has no infinity literal, so stored schedules and API payloads carry
// this reserved string instead.
const OpenBoundToken = "inf"

// Bound is the upper edge of a bracket: either a finite income amount or
// the open (+infinity) edge of the top bracket.
type Bound struct {
	value decimal.Decimal
	open  bool
}

// Finite returns a bound at the given income amount
func Finite(v decimal.Decimal) Bound {
	return Bound{value: v}
}

// Unbounded returns the open top-bracket edge
func Unbounded() Bound {
	return Bound{open: true}
}

// ParseBound converts a wire key into a bound. Purely numeric text becomes
// a finite bound; anything else (the "inf" sentinel, "Infinity", "NaN") is
// treated as the open edge.
func ParseBound(s string) Bound {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Unbounded()
	}
	return Finite(v)
}

// IsOpen reports whether this is the +infinity edge
func (b Bound) IsOpen() bool { return b.open }

// Value returns the finite amount. It is zero for the open edge; callers
// must check IsOpen first.
func (b Bound) Value() decimal.Decimal {
	if b.open {
		return decimal.Zero
	}
	return b.value
}

// Less reports whether b sits strictly below o
func (b Bound) Less(o Bound) bool {
	switch {
	case b.open:
		return false
	case o.open:
		return true
	default:
		return b.value.LessThan(o.value)
	}
}

// Equal reports whether both bounds describe the same edge
func (b Bound) Equal(o Bound) bool {
	if b.open || o.open {
		return b.open == o.open
	}
	return b.value.Equal(o.value)
}

// Clamp returns min(income, b). The open edge never clamps.
func (b Bound) Clamp(income decimal.Decimal) decimal.Decimal {
	if b.open || income.LessThan(b.value) {
		return income
	}
	return b.value
}

// String returns the wire spelling: the decimal text or "inf"
func (b Bound) String() string {
	if b.open {
		return OpenBoundToken
	}
	return b.value.String()
}

// MarshalJSON encodes the bound as a string, matching how decimal.Decimal
// values are encoded elsewhere in the payloads.
func (b Bound) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON accepts either a JSON string or a bare number
func (b *Bound) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("bound must be a string or number: %w", err)
		}
		s = n.String()
	}
	*b = ParseBound(s)
	return nil
}

// MarshalYAML encodes the bound with its wire spelling
func (b Bound) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}
