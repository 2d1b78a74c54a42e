package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rgehrsitz/taxcurve/internal/calculation"
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testKey = domain.ScheduleKey{Jurisdiction: domain.DefaultJurisdiction, FiscalYear: "2021", FilingStatus: domain.SingleFiler}

func testSchedule() *domain.BracketSchedule {
	return domain.MustBracketSchedule(testKey, []domain.BracketThreshold{
		{Upper: domain.Finite(d("100")), Rate: d("0.10")},
		{Upper: domain.Finite(d("300")), Rate: d("0.20")},
		{Upper: domain.Unbounded(), Rate: d("0.30")},
	})
}

func testSummary(t *testing.T, income string) *domain.LiabilitySummary {
	t.Helper()
	summary, err := calculation.Summarize(d(income), testSchedule())
	require.NoError(t, err)
	return summary
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "$1234.50", FormatCurrency(d("1234.5")))
	assert.Equal(t, "12.00%", FormatPercentage(d("0.12")))
	assert.Equal(t, "39.60%", FormatPercentage(d("0.396")))
	assert.Equal(t, "and up", FormatBound(domain.Unbounded()))
	assert.Equal(t, "$300.00", FormatBound(domain.Finite(d("300"))))
}

func TestNewFormatter(t *testing.T) {
	for _, name := range Formats {
		f, err := NewFormatter(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
	_, err := NewFormatter("html")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestCSVFormatter(t *testing.T) {
	f := &CSVFormatter{}

	out, err := f.Summary(testSummary(t, "250"))
	require.NoError(t, err)
	assert.Equal(t, "bracket_low,bracket_high,bracket_rate,bracket_owed,cum_owed_low,cum_owed_high\n"+
		"0,100,0.1,10,0,10\n"+
		"100,300,0.2,30,10,40\n", out)

	out, err = f.Schedule(testSchedule())
	require.NoError(t, err)
	assert.Equal(t, "upper,rate\n100,0.1\n300,0.2\ninf,0.3\n", out)

	points, err := calculation.SampleCurve(d("400"), testSchedule(), 1)
	require.NoError(t, err)
	out, err = f.Curve(testKey, points)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 7)
	assert.Equal(t, "400,80,0.3", lines[6])
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{}
	out, err := f.Summary(testSummary(t, "250"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "40", decoded["total_owed"])
	assert.Equal(t, "0.16", decoded["effective_rate"])
	assert.Len(t, decoded["rows"], 2)

	out, err = f.Schedule(testSchedule())
	require.NoError(t, err)
	assert.Contains(t, out, `"upper":"inf"`)

	out, err = f.Keys([]domain.ScheduleKey{testKey})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"jurisdiction":"United States","fiscal_year":"2021","filing_status":"Single Filer"}]`, out)
}

func TestYAMLFormatter(t *testing.T) {
	out, err := (&YAMLFormatter{}).Schedule(testSchedule())
	require.NoError(t, err)
	assert.Contains(t, out, "filing_status: Single Filer")
	assert.Contains(t, out, "upper: inf")
}

func TestConsoleFormatter_Summary(t *testing.T) {
	f := &ConsoleFormatter{ChartWidth: 60, ChartHeight: 10}

	out, err := f.Summary(testSummary(t, "1000"))
	require.NoError(t, err)
	assert.Contains(t, out, "United States 2021, Single Filer")
	assert.Contains(t, out, "$300.00 - and up")
	assert.Contains(t, out, "Total Owed: $260.00 (26.00% effective, 30.00% marginal)")
	assert.Contains(t, out, "Top bracket: every further dollar is taxed at 30.00%")

	out, err = f.Summary(testSummary(t, "0"))
	require.NoError(t, err)
	assert.Contains(t, out, "No tax owed")
	assert.Contains(t, out, "Room in bracket: $100.00 before the rate changes to 20.00%")
}

func TestConsoleFormatter_Curve(t *testing.T) {
	f := &ConsoleFormatter{ChartWidth: 60, ChartHeight: 10}
	points, err := calculation.SampleCurve(d("400"), testSchedule(), 3)
	require.NoError(t, err)

	out, err := f.Curve(testKey, points)
	require.NoError(t, err)
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "12 samples up to $400.00, $80.00 owed at the ceiling")

	chart := (&CurveChart{Width: 60, Height: 10}).Render(points)
	// plot rows, axis, labels
	assert.Len(t, strings.Split(strings.TrimRight(chart, "\n"), "\n"), 12)

	assert.Contains(t, (&CurveChart{Width: 60, Height: 10}).Render(nil), "No data")
}

func TestConsoleFormatter_Keys(t *testing.T) {
	f := &ConsoleFormatter{}
	out, err := f.Keys([]domain.ScheduleKey{testKey})
	require.NoError(t, err)
	assert.Contains(t, out, "Single Filer")
	assert.Contains(t, out, "single")

	out, err = f.Keys(nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No schedules stored")
}
