package calculation

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, context ...interface{}) {
	t.Helper()
	assert.Truef(t, d(expected).Equal(actual), "expected %s, got %s %v", expected, actual, context)
}

var testKey = domain.ScheduleKey{
	Jurisdiction: domain.DefaultJurisdiction,
	FiscalYear:   "2021",
	FilingStatus: domain.SingleFiler,
}

// {100: 10%, 300: 20%, inf: 30%}
func threeBracketSchedule() *domain.BracketSchedule {
	return domain.MustBracketSchedule(testKey, []domain.BracketThreshold{
		{Upper: domain.Finite(d("100")), Rate: d("0.10")},
		{Upper: domain.Finite(d("300")), Rate: d("0.20")},
		{Upper: domain.Unbounded(), Rate: d("0.30")},
	})
}

func TestComputeBreakdown_PartialSecondBracket(t *testing.T) {
	rows, err := ComputeBreakdown(d("250"), threeBracketSchedule())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assertDecimal(t, "0", rows[0].BracketLow)
	assert.True(t, rows[0].BracketHigh.Equal(domain.Finite(d("100"))))
	assertDecimal(t, "0.10", rows[0].BracketRate)
	assertDecimal(t, "10", rows[0].BracketOwed)
	assertDecimal(t, "0", rows[0].CumOwedLow)
	assertDecimal(t, "10", rows[0].CumOwedHigh)

	assertDecimal(t, "100", rows[1].BracketLow)
	assert.True(t, rows[1].BracketHigh.Equal(domain.Finite(d("300"))))
	assertDecimal(t, "30", rows[1].BracketOwed)
	assertDecimal(t, "10", rows[1].CumOwedLow)
	assertDecimal(t, "40", rows[1].CumOwedHigh)

	assertDecimal(t, "40", TotalOwed(rows))
}

func TestComputeBreakdown_OpenTopBracket(t *testing.T) {
	rows, err := ComputeBreakdown(d("1000"), threeBracketSchedule())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	top := rows[2]
	assert.True(t, top.BracketHigh.IsOpen(), "top row keeps its open edge")
	assertDecimal(t, "300", top.BracketLow)
	assertDecimal(t, "210", top.BracketOwed)
	assertDecimal(t, "260", top.CumOwedHigh)
}

func TestComputeBreakdown_ZeroIncome(t *testing.T) {
	rows, err := ComputeBreakdown(decimal.Zero, threeBracketSchedule())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assertDecimal(t, "0", TotalOwed(rows))
}

func TestComputeBreakdown_IncomeOnThreshold(t *testing.T) {
	rows, err := ComputeBreakdown(d("100"), threeBracketSchedule())
	require.NoError(t, err)
	require.Len(t, rows, 1, "no row for a bracket the income does not enter")
	assertDecimal(t, "10", rows[0].CumOwedHigh)
}

func TestComputeBreakdown_ZeroRateBracket(t *testing.T) {
	s := domain.MustBracketSchedule(testKey, []domain.BracketThreshold{
		{Upper: domain.Finite(d("100")), Rate: d("0.10")},
		{Upper: domain.Finite(d("200")), Rate: d("0")},
		{Upper: domain.Unbounded(), Rate: d("0.20")},
	})

	// the 0% bracket emits no row and leaves lowerBound at 100
	rows, err := ComputeBreakdown(d("300"), s)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assertDecimal(t, "100", rows[1].BracketLow)
	assert.True(t, rows[1].BracketHigh.IsOpen())
	assertDecimal(t, "40", rows[1].BracketOwed)
	assertDecimal(t, "10", rows[1].CumOwedLow)
	assertDecimal(t, "50", TotalOwed(rows))
	assert.True(t, rows[0].BracketHigh.Equal(domain.Finite(rows[1].BracketLow)))

	// income ending inside the 0% bracket: the open bracket's slice still
	// starts at 100
	rows, err = ComputeBreakdown(d("150"), s)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assertDecimal(t, "100", rows[1].BracketLow)
	assertDecimal(t, "10", rows[1].BracketOwed)
	assertDecimal(t, "20", TotalOwed(rows))
}

func TestComputeBreakdown_LeadingZeroRateBracket(t *testing.T) {
	s := domain.MustBracketSchedule(testKey, []domain.BracketThreshold{
		{Upper: domain.Finite(d("100")), Rate: d("0")},
		{Upper: domain.Finite(d("200")), Rate: d("0.10")},
		{Upper: domain.Unbounded(), Rate: d("0.20")},
	})

	rows, err := ComputeBreakdown(d("150"), s)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assertDecimal(t, "0", rows[0].BracketLow)
	assertDecimal(t, "15", rows[0].BracketOwed)
}

func TestComputeBreakdown_Errors(t *testing.T) {
	_, err := ComputeBreakdown(d("-1"), threeBracketSchedule())
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = ComputeBreakdown(d("100"), &domain.BracketSchedule{})
	assert.True(t, errors.Is(err, domain.ErrInvalidSchedule))

	_, err = ComputeBreakdown(d("100"), nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidSchedule))
}

func TestComputeBreakdown_Properties(t *testing.T) {
	schedules := map[string]*domain.BracketSchedule{
		"three brackets": threeBracketSchedule(),
		"zero-rate middle": domain.MustBracketSchedule(testKey, []domain.BracketThreshold{
			{Upper: domain.Finite(d("100")), Rate: d("0.10")},
			{Upper: domain.Finite(d("200")), Rate: d("0")},
			{Upper: domain.Unbounded(), Rate: d("0.20")},
		}),
		"zero-rate first": domain.MustBracketSchedule(testKey, []domain.BracketThreshold{
			{Upper: domain.Finite(d("50")), Rate: d("0")},
			{Upper: domain.Finite(d("300")), Rate: d("0.15")},
			{Upper: domain.Unbounded(), Rate: d("0.35")},
		}),
	}
	incomes := []string{"0", "0.01", "50", "99.99", "100", "100.01", "150", "200", "299", "300", "301", "12345.67", "1000000"}

	for name, s := range schedules {
		previousTotal := decimal.Zero
		for _, income := range incomes {
			t.Run(name+"/"+income, func(t *testing.T) {
				rows, err := ComputeBreakdown(d(income), s)
				require.NoError(t, err)

				sum := decimal.Zero
				for i, row := range rows {
					assert.True(t, row.BracketOwed.IsPositive(), "row %d owes nothing", i)
					assert.True(t, row.CumOwedHigh.Equal(row.CumOwedLow.Add(row.BracketOwed)), "row %d cumulative", i)
					if i == 0 {
						assertDecimal(t, "0", row.BracketLow)
						assertDecimal(t, "0", row.CumOwedLow)
					} else {
						assert.True(t, rows[i-1].BracketHigh.Equal(domain.Finite(row.BracketLow)), "row %d bounds not contiguous", i)
						assert.True(t, row.CumOwedLow.Equal(rows[i-1].CumOwedHigh), "row %d cumulative not contiguous", i)
					}
					sum = sum.Add(row.BracketOwed)
				}
				assert.True(t, sum.Equal(TotalOwed(rows)), "owed does not sum to the final cumulative")

				total := TotalOwed(rows)
				assert.True(t, total.GreaterThanOrEqual(previousTotal), "liability decreased at %s", income)
				previousTotal = total
			})
		}
	}
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(d("250"), threeBracketSchedule())
	require.NoError(t, err)

	assert.Equal(t, testKey, summary.Key)
	assertDecimal(t, "250", summary.Income)
	assertDecimal(t, "40", summary.TotalOwed)
	assertDecimal(t, "0.16", summary.EffectiveRate)
	assertDecimal(t, "0.20", summary.MarginalRate)
	assertDecimal(t, "50", summary.Room.Room)
	assert.Len(t, summary.Rows, 2)

	zero, err := Summarize(decimal.Zero, threeBracketSchedule())
	require.NoError(t, err)
	assertDecimal(t, "0", zero.EffectiveRate)
	assertDecimal(t, "0.10", zero.MarginalRate)
}

func TestRoomInBracket(t *testing.T) {
	s := threeBracketSchedule()
	tests := []struct {
		income   string
		low      string
		rate     string
		room     string
		nextRate string
	}{
		{"0", "0", "0.10", "100", "0.20"},
		{"100", "0", "0.10", "0", "0.20"},
		{"250", "100", "0.20", "50", "0.30"},
		{"300.5", "300", "0.30", "0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.income, func(t *testing.T) {
			room, err := RoomInBracket(d(tt.income), s)
			require.NoError(t, err)
			assertDecimal(t, tt.low, room.BracketLow)
			assertDecimal(t, tt.rate, room.Rate)
			assertDecimal(t, tt.room, room.Room)
			if tt.nextRate == "" {
				assert.True(t, room.BracketHigh.IsOpen())
				assert.Nil(t, room.NextRate)
				return
			}
			require.NotNil(t, room.NextRate)
			assertDecimal(t, tt.nextRate, *room.NextRate)
		})
	}

	_, err := RoomInBracket(d("-1"), s)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMarginalRate(t *testing.T) {
	s := threeBracketSchedule()
	tests := map[string]string{
		"0":      "0.10",
		"100":    "0.10",
		"100.01": "0.20",
		"300":    "0.20",
		"5000":   "0.30",
	}
	for income, expected := range tests {
		rate, err := MarginalRate(d(income), s)
		require.NoError(t, err)
		assertDecimal(t, expected, rate, income)
	}
}

func TestSampleCurve_OnePointPerBracket(t *testing.T) {
	s := threeBracketSchedule()
	points, err := SampleCurve(d("400"), s, 1)
	require.NoError(t, err)
	require.Len(t, points, 6, "two samples per bracket")

	expected := []struct{ income, owed, rate string }{
		{"50", "5", "0.10"},
		{"100", "10", "0.10"},
		{"200", "30", "0.20"},
		{"300", "50", "0.20"},
		{"350", "65", "0.30"},
		{"400", "80", "0.30"},
	}
	for i, e := range expected {
		assertDecimal(t, e.income, points[i].Income, "income at %d", i)
		assertDecimal(t, e.owed, points[i].CumulativeOwed, "owed at %d", i)
		assertDecimal(t, e.rate, points[i].MarginalRate, "rate at %d", i)
	}

	rows, err := ComputeBreakdown(d("400"), s)
	require.NoError(t, err)
	assert.True(t, points[len(points)-1].CumulativeOwed.Equal(TotalOwed(rows)))
}

func TestSampleCurve_CeilingInsideFiniteBracket(t *testing.T) {
	s := threeBracketSchedule()
	points, err := SampleCurve(d("250"), s, 1)
	require.NoError(t, err)
	require.Len(t, points, 4, "sampling stops once the ceiling is reached")

	for _, p := range points {
		assert.True(t, p.Income.LessThanOrEqual(d("250")), "sample %s above ceiling", p.Income)
	}
	assertDecimal(t, "175", points[2].Income)
	assertDecimal(t, "250", points[3].Income)
	assertDecimal(t, "40", points[3].CumulativeOwed)
}

func TestSampleCurve_Properties(t *testing.T) {
	s := threeBracketSchedule()
	for _, p := range []int{1, 2, 3, 7, 10} {
		points, err := SampleCurve(d("12345.67"), s, p)
		require.NoError(t, err)
		require.Len(t, points, 3*(p+1))

		for i := 1; i < len(points); i++ {
			assert.True(t, points[i].Income.GreaterThan(points[i-1].Income), "p=%d: income not increasing at %d", p, i)
			assert.True(t, points[i].CumulativeOwed.GreaterThanOrEqual(points[i-1].CumulativeOwed), "p=%d: owed decreased at %d", p, i)
		}

		rows, err := ComputeBreakdown(d("12345.67"), s)
		require.NoError(t, err)
		assert.True(t, points[len(points)-1].CumulativeOwed.Equal(TotalOwed(rows)), "p=%d: curve ends off the breakdown total", p)
	}
}

func TestSampleCurve_Errors(t *testing.T) {
	_, err := SampleCurve(d("400"), threeBracketSchedule(), 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = SampleCurve(d("-5"), threeBracketSchedule(), 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = SampleCurve(d("400"), &domain.BracketSchedule{}, 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidSchedule))

	points, err := SampleCurve(decimal.Zero, threeBracketSchedule(), 1)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDefaultCeiling(t *testing.T) {
	ceiling, err := DefaultCeiling(threeBracketSchedule(), DefaultCeilingBuffer)
	require.NoError(t, err)
	assertDecimal(t, "360", ceiling)

	flat := domain.MustBracketSchedule(testKey, []domain.BracketThreshold{
		{Upper: domain.Unbounded(), Rate: d("0.01")},
	})
	_, err = DefaultCeiling(flat, DefaultCeilingBuffer)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = DefaultCeiling(threeBracketSchedule(), decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRateSteps(t *testing.T) {
	steps, err := RateSteps(threeBracketSchedule())
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assertDecimal(t, "0", steps[0].Low)
	assert.True(t, steps[0].High.Equal(domain.Finite(d("100"))))
	assertDecimal(t, "100", steps[1].Low)
	assertDecimal(t, "300", steps[2].Low)
	assert.True(t, steps[2].High.IsOpen())
	assertDecimal(t, "0.30", steps[2].Rate)
}
