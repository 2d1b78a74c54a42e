package output

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxcurve/internal/domain"
)

// CSVFormatter formats results as CSV. Values are unformatted decimals so
// the output can be loaded straight into a spreadsheet or plotting tool.
type CSVFormatter struct{}

func (cf *CSVFormatter) write(header []string, rows [][]string) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("CSV writer error: %w", err)
	}
	return sb.String(), nil
}

func (cf *CSVFormatter) Summary(summary *domain.LiabilitySummary) (string, error) {
	rows := make([][]string, 0, len(summary.Rows))
	for _, r := range summary.Rows {
		rows = append(rows, []string{
			r.BracketLow.String(),
			r.BracketHigh.String(),
			r.BracketRate.String(),
			r.BracketOwed.String(),
			r.CumOwedLow.String(),
			r.CumOwedHigh.String(),
		})
	}
	return cf.write([]string{"bracket_low", "bracket_high", "bracket_rate", "bracket_owed", "cum_owed_low", "cum_owed_high"}, rows)
}

func (cf *CSVFormatter) Curve(_ domain.ScheduleKey, points []domain.CurvePoint) (string, error) {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Income.String(), p.CumulativeOwed.String(), p.MarginalRate.String()})
	}
	return cf.write([]string{"income", "cumulative_owed", "marginal_rate"}, rows)
}

func (cf *CSVFormatter) Steps(_ domain.ScheduleKey, steps []domain.RateStep) (string, error) {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		rows = append(rows, []string{s.Low.String(), s.High.String(), s.Rate.String()})
	}
	return cf.write([]string{"low", "high", "rate"}, rows)
}

func (cf *CSVFormatter) Schedule(schedule *domain.BracketSchedule) (string, error) {
	rows := make([][]string, 0, schedule.Len())
	for _, t := range schedule.Thresholds() {
		rows = append(rows, []string{t.Upper.String(), t.Rate.String()})
	}
	return cf.write([]string{"upper", "rate"}, rows)
}

func (cf *CSVFormatter) Keys(keys []domain.ScheduleKey) (string, error) {
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k.Jurisdiction, k.FiscalYear, string(k.FilingStatus)})
	}
	return cf.write([]string{"jurisdiction", "fiscal_year", "filing_status"}, rows)
}
