package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultJurisdiction is the jurisdiction assigned to schedules ingested
// from the historical federal rate table.
const DefaultJurisdiction = "United States"

// ScheduleKey identifies one schedule in the store
type ScheduleKey struct {
	Jurisdiction string       `yaml:"jurisdiction" json:"jurisdiction"`
	FiscalYear   string       `yaml:"fiscal_year" json:"fiscal_year"`
	FilingStatus FilingStatus `yaml:"filing_status" json:"filing_status"`
}

func (k ScheduleKey) String() string {
	return k.Jurisdiction + "/" + k.FiscalYear + "/" + string(k.FilingStatus)
}

// Validate checks that every part of the key is present
func (k ScheduleKey) Validate() error {
	if k.Jurisdiction == "" {
		return NewError(KindInvalidInput, "validate_key", "jurisdiction is required")
	}
	if k.FiscalYear == "" {
		return NewError(KindInvalidInput, "validate_key", "fiscal year is required")
	}
	if !k.FilingStatus.IsValid() {
		return NewError(KindInvalidInput, "validate_key", fmt.Sprintf("unknown filing status %q", k.FilingStatus))
	}
	return nil
}

// BracketThreshold: income above the previous threshold and up to Upper is
// taxed at Rate.
type BracketThreshold struct {
	Upper Bound           `yaml:"upper" json:"upper"`
	Rate  decimal.Decimal `yaml:"rate" json:"rate"`
}

// BracketSchedule is the canonical progressive rate table for one
// jurisdiction, fiscal year and filing status. It is immutable once built;
// a changed source produces a new schedule.
type BracketSchedule struct {
	key        ScheduleKey
	thresholds []BracketThreshold
}

// NewBracketSchedule copies thresholds and validates the result
func NewBracketSchedule(key ScheduleKey, thresholds []BracketThreshold) (*BracketSchedule, error) {
	s := &BracketSchedule{
		key:        key,
		thresholds: append([]BracketThreshold(nil), thresholds...),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustBracketSchedule is NewBracketSchedule for literal tables known to be valid
func MustBracketSchedule(key ScheduleKey, thresholds []BracketThreshold) *BracketSchedule {
	s, err := NewBracketSchedule(key, thresholds)
	if err != nil {
		panic(err)
	}
	return s
}

// Key returns the schedule identity
func (s *BracketSchedule) Key() ScheduleKey { return s.key }

// Len returns the number of brackets
func (s *BracketSchedule) Len() int { return len(s.thresholds) }

// At returns the i-th bracket, lowest first
func (s *BracketSchedule) At(i int) BracketThreshold { return s.thresholds[i] }

// Thresholds returns a copy of the brackets in ascending order
func (s *BracketSchedule) Thresholds() []BracketThreshold {
	return append([]BracketThreshold(nil), s.thresholds...)
}

// TopRate returns the marginal rate of the open top bracket
func (s *BracketSchedule) TopRate() decimal.Decimal {
	return s.thresholds[len(s.thresholds)-1].Rate
}

// MaxFiniteThreshold returns the highest finite bracket edge. ok is false
// for a single-bracket (flat) schedule.
func (s *BracketSchedule) MaxFiniteThreshold() (decimal.Decimal, bool) {
	if len(s.thresholds) < 2 {
		return decimal.Zero, false
	}
	return s.thresholds[len(s.thresholds)-2].Upper.Value(), true
}

// Validate enforces the structural invariants: non-empty, strictly
// increasing upper bounds, exactly one open bound and it is last, positive
// finite bounds, and rates within [0, 1].
func (s *BracketSchedule) Validate() error {
	if s == nil || len(s.thresholds) == 0 {
		return NewError(KindInvalidSchedule, "validate_schedule", "schedule has no brackets")
	}
	one := decimal.NewFromInt(1)
	last := len(s.thresholds) - 1
	for i, t := range s.thresholds {
		if t.Rate.IsNegative() || t.Rate.GreaterThan(one) {
			return NewError(KindInvalidSchedule, "validate_schedule",
				fmt.Sprintf("%s: bracket %d rate %s outside [0, 1]", s.key, i, t.Rate))
		}
		if t.Upper.IsOpen() {
			if i != last {
				return NewError(KindInvalidSchedule, "validate_schedule",
					fmt.Sprintf("%s: open bracket at position %d is not the top bracket", s.key, i))
			}
			continue
		}
		if !t.Upper.Value().IsPositive() {
			return NewError(KindInvalidSchedule, "validate_schedule",
				fmt.Sprintf("%s: bracket %d upper bound %s must be positive", s.key, i, t.Upper))
		}
		if i > 0 && !s.thresholds[i-1].Upper.Less(t.Upper) {
			return NewError(KindInvalidSchedule, "validate_schedule",
				fmt.Sprintf("%s: bracket %d upper bound %s does not increase over %s", s.key, i, t.Upper, s.thresholds[i-1].Upper))
		}
	}
	if !s.thresholds[last].Upper.IsOpen() {
		return NewError(KindInvalidSchedule, "validate_schedule",
			fmt.Sprintf("%s: top bracket is bounded at %s, want open", s.key, s.thresholds[last].Upper))
	}
	return nil
}
