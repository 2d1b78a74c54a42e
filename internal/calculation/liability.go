package calculation

import (
	"fmt"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/shopspring/decimal"
)

// LIABILITY CALCULATION NOTES:
//
// 1. All arithmetic is exact decimal; nothing is rounded here. Rounding for
//    display belongs to the output formatters.
//
// 2. A bracket row is only materialized when it owes something. Income that
//    never reaches a bracket leaves the running totals untouched, so every
//    bracket above the income is skipped the same way. A 0% bracket owes
//    nothing either, so its span is taxed as part of the next row.
//
// 3. The top row keeps the declared open edge as its BracketHigh rather than
//    the income, since the field describes the bracket, not the amount taxed.

// ComputeBreakdown walks the schedule's brackets in ascending order and
// returns one row per bracket that the income reaches with a non-zero amount
// owed. A structurally invalid schedule fails with InvalidSchedule; no
// partial result is returned.
func ComputeBreakdown(income decimal.Decimal, schedule *domain.BracketSchedule) ([]domain.BreakdownRow, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	if income.IsNegative() {
		return nil, domain.NewError(domain.KindInvalidInput, "compute_breakdown",
			fmt.Sprintf("income %s cannot be negative", income))
	}

	rows := []domain.BreakdownRow{}
	lowerBound := decimal.Zero
	cumulativeOwed := decimal.Zero

	for i := 0; i < schedule.Len(); i++ {
		bracket := schedule.At(i)

		// Taxable slice: min(income, upper) - lower
		slice := bracket.Upper.Clamp(income).Sub(lowerBound)
		if !slice.IsPositive() {
			continue
		}

		owed := slice.Mul(bracket.Rate)
		if !owed.IsPositive() {
			// Nothing owed: neither running total moves, so the next row
			// starts where the last emitted one ended.
			continue
		}

		rows = append(rows, domain.BreakdownRow{
			BracketLow:  lowerBound,
			BracketHigh: bracket.Upper,
			BracketRate: bracket.Rate,
			BracketOwed: owed,
			CumOwedLow:  cumulativeOwed,
			CumOwedHigh: cumulativeOwed.Add(owed),
		})
		cumulativeOwed = cumulativeOwed.Add(owed)
		if !bracket.Upper.IsOpen() {
			lowerBound = bracket.Upper.Value()
		}
	}

	return rows, nil
}

// TotalOwed returns the cumulative amount of a breakdown, zero when empty
func TotalOwed(rows []domain.BreakdownRow) decimal.Decimal {
	if len(rows) == 0 {
		return decimal.Zero
	}
	return rows[len(rows)-1].CumOwedHigh
}

// MarginalRate returns the rate applied to the last dollar of income
func MarginalRate(income decimal.Decimal, schedule *domain.BracketSchedule) (decimal.Decimal, error) {
	if err := schedule.Validate(); err != nil {
		return decimal.Zero, err
	}
	for i := 0; i < schedule.Len(); i++ {
		bracket := schedule.At(i)
		if bracket.Upper.IsOpen() || income.LessThanOrEqual(bracket.Upper.Value()) {
			return bracket.Rate, nil
		}
	}
	return schedule.TopRate(), nil
}

// RoomInBracket reports how much more income fits in the bracket the income
// falls in before the next rate applies. Income exactly on a threshold
// belongs to the lower bracket and has no room left in it.
func RoomInBracket(income decimal.Decimal, schedule *domain.BracketSchedule) (domain.BracketRoom, error) {
	if err := schedule.Validate(); err != nil {
		return domain.BracketRoom{}, err
	}
	if income.IsNegative() {
		return domain.BracketRoom{}, domain.NewError(domain.KindInvalidInput, "room_in_bracket",
			fmt.Sprintf("income %s cannot be negative", income))
	}

	lower := decimal.Zero
	for i := 0; i < schedule.Len(); i++ {
		bracket := schedule.At(i)
		if bracket.Upper.IsOpen() {
			return domain.BracketRoom{BracketLow: lower, BracketHigh: bracket.Upper, Rate: bracket.Rate, Room: decimal.Zero}, nil
		}
		if income.LessThanOrEqual(bracket.Upper.Value()) {
			next := schedule.At(i + 1).Rate
			return domain.BracketRoom{
				BracketLow:  lower,
				BracketHigh: bracket.Upper,
				Rate:        bracket.Rate,
				Room:        bracket.Upper.Value().Sub(income),
				NextRate:    &next,
			}, nil
		}
		lower = bracket.Upper.Value()
	}
	// unreachable for a valid schedule: the last bracket is open
	return domain.BracketRoom{}, domain.NewError(domain.KindInvalidSchedule, "room_in_bracket", "no open top bracket")
}

// Summarize computes the breakdown together with the totals presentation
// layers show next to it: totals, effective and marginal rate, and the room
// left before the marginal rate changes.
func Summarize(income decimal.Decimal, schedule *domain.BracketSchedule) (*domain.LiabilitySummary, error) {
	rows, err := ComputeBreakdown(income, schedule)
	if err != nil {
		return nil, err
	}
	marginal, err := MarginalRate(income, schedule)
	if err != nil {
		return nil, err
	}
	room, err := RoomInBracket(income, schedule)
	if err != nil {
		return nil, err
	}

	total := TotalOwed(rows)
	effective := decimal.Zero
	if income.IsPositive() {
		effective = total.Div(income)
	}

	return &domain.LiabilitySummary{
		Key:           schedule.Key(),
		Income:        income,
		TotalOwed:     total,
		EffectiveRate: effective,
		MarginalRate:  marginal,
		Room:          room,
		Rows:          rows,
	}, nil
}
