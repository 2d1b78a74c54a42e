package calculation

import (
	"fmt"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultCeilingBuffer stretches whole-schedule plots past the highest
// finite threshold so the open top bracket is visible.
var DefaultCeilingBuffer = decimal.NewFromFloat(1.2)

// SampleCurve produces a piecewise-linear, plot-ready sequence of cumulative
// liability samples from zero up to ceiling.
//
// Each bracket contributes pointsPerBracket evenly spaced interior samples
// followed by its upper edge; the bracket's lower edge is the previous
// bracket's last sample. The open top bracket ends at the ceiling, and no
// sample is ever placed above the ceiling. The running owed total is carried
// across brackets, so the last sample equals the breakdown total at ceiling.
func SampleCurve(ceiling decimal.Decimal, schedule *domain.BracketSchedule, pointsPerBracket int) ([]domain.CurvePoint, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	if pointsPerBracket < 1 {
		return nil, domain.NewError(domain.KindInvalidInput, "sample_curve",
			fmt.Sprintf("points per bracket must be at least 1, got %d", pointsPerBracket))
	}
	if ceiling.IsNegative() {
		return nil, domain.NewError(domain.KindInvalidInput, "sample_curve",
			fmt.Sprintf("income ceiling %s cannot be negative", ceiling))
	}

	points := make([]domain.CurvePoint, 0, schedule.Len()*(pointsPerBracket+1))
	segments := decimal.NewFromInt(int64(pointsPerBracket + 1))
	lowerBound := decimal.Zero
	owed := decimal.Zero

	for i := 0; i < schedule.Len() && lowerBound.LessThan(ceiling); i++ {
		bracket := schedule.At(i)
		effectiveUpper := bracket.Upper.Clamp(ceiling)
		step := effectiveUpper.Sub(lowerBound).Div(segments)

		bottom := lowerBound
		for k := 1; k <= pointsPerBracket+1; k++ {
			top := effectiveUpper
			if k <= pointsPerBracket {
				top = lowerBound.Add(step.Mul(decimal.NewFromInt(int64(k))))
			}
			owed = owed.Add(top.Sub(bottom).Mul(bracket.Rate))
			points = append(points, domain.CurvePoint{
				Income:         top,
				CumulativeOwed: owed,
				MarginalRate:   bracket.Rate,
			})
			bottom = top
		}

		lowerBound = effectiveUpper
	}

	return points, nil
}

// DefaultCeiling returns the income range used to plot a whole schedule:
// the highest finite threshold scaled by buffer. A flat schedule has no
// finite threshold, so callers must pick a ceiling themselves.
func DefaultCeiling(schedule *domain.BracketSchedule, buffer decimal.Decimal) (decimal.Decimal, error) {
	if err := schedule.Validate(); err != nil {
		return decimal.Zero, err
	}
	if !buffer.IsPositive() {
		return decimal.Zero, domain.NewError(domain.KindInvalidInput, "default_ceiling",
			fmt.Sprintf("ceiling buffer must be positive, got %s", buffer))
	}
	top, ok := schedule.MaxFiniteThreshold()
	if !ok {
		return decimal.Zero, domain.NewError(domain.KindInvalidInput, "default_ceiling",
			fmt.Sprintf("%s is a flat schedule; an explicit ceiling is required", schedule.Key()))
	}
	return top.Mul(buffer), nil
}

// RateSteps lists where each marginal rate starts and ends, for drawing the
// step-after marginal rate graph.
func RateSteps(schedule *domain.BracketSchedule) ([]domain.RateStep, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	steps := make([]domain.RateStep, 0, schedule.Len())
	low := decimal.Zero
	for i := 0; i < schedule.Len(); i++ {
		bracket := schedule.At(i)
		steps = append(steps, domain.RateStep{Low: low, High: bracket.Upper, Rate: bracket.Rate})
		low = bracket.Upper.Value()
	}
	return steps, nil
}
