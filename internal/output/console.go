package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleFormatter renders human-readable tables and a curve chart
type ConsoleFormatter struct {
	ChartWidth  int
	ChartHeight int
}

// newTable builds a bordered table; numeric columns are right aligned
func newTable(headers []string, numeric map[int]bool, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case numeric[col]:
				return TableNumberStyle
			default:
				return TableCellStyle
			}
		})
	return t.String()
}

func title(key domain.ScheduleKey) string {
	return TitleStyle.Render(fmt.Sprintf("%s %s, %s", key.Jurisdiction, key.FiscalYear, key.FilingStatus))
}

func (cf *ConsoleFormatter) Summary(summary *domain.LiabilitySummary) (string, error) {
	var sb strings.Builder
	sb.WriteString(title(summary.Key) + "\n")
	sb.WriteString(LabelStyle.Render("Income: ") + FormatCurrency(summary.Income) + "\n\n")

	if len(summary.Rows) == 0 {
		sb.WriteString(LabelStyle.Render("No tax owed at this income") + "\n")
	} else {
		rows := make([][]string, 0, len(summary.Rows))
		for _, r := range summary.Rows {
			taxed := r.BracketHigh.Clamp(summary.Income).Sub(r.BracketLow)
			rows = append(rows, []string{
				FormatCurrency(r.BracketLow) + " - " + FormatBound(r.BracketHigh),
				FormatPercentage(r.BracketRate),
				FormatCurrency(taxed),
				FormatCurrency(r.BracketOwed),
				FormatCurrency(r.CumOwedHigh),
			})
		}
		sb.WriteString(newTable(
			[]string{"Bracket", "Rate", "Taxed", "Owed", "Cumulative"},
			map[int]bool{1: true, 2: true, 3: true, 4: true},
			rows,
		))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(TotalStyle.Render(fmt.Sprintf("Total Owed: %s (%s effective, %s marginal)",
		FormatCurrency(summary.TotalOwed),
		FormatPercentage(summary.EffectiveRate),
		FormatPercentage(summary.MarginalRate))))
	sb.WriteString("\n")
	room := summary.Room
	if room.NextRate == nil {
		sb.WriteString(LabelStyle.Render("Top bracket: every further dollar is taxed at "+FormatPercentage(room.Rate)) + "\n")
	} else {
		sb.WriteString(LabelStyle.Render(fmt.Sprintf("Room in bracket: %s before the rate changes to %s",
			FormatCurrency(room.Room), FormatPercentage(*room.NextRate))) + "\n")
	}
	return sb.String(), nil
}

func (cf *ConsoleFormatter) Curve(key domain.ScheduleKey, points []domain.CurvePoint) (string, error) {
	var sb strings.Builder
	sb.WriteString(title(key) + "\n")
	sb.WriteString(LabelStyle.Render("Cumulative tax owed by income") + "\n\n")

	chart := &CurveChart{Width: cf.ChartWidth, Height: cf.ChartHeight}
	sb.WriteString(chart.Render(points))

	if len(points) > 0 {
		last := points[len(points)-1]
		sb.WriteString(fmt.Sprintf("\n%d samples up to %s, %s owed at the ceiling\n",
			len(points), FormatCurrency(last.Income), FormatCurrency(last.CumulativeOwed)))
	}
	return sb.String(), nil
}

func (cf *ConsoleFormatter) Steps(key domain.ScheduleKey, steps []domain.RateStep) (string, error) {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		rows = append(rows, []string{FormatCurrency(s.Low), FormatBound(s.High), FormatPercentage(s.Rate)})
	}
	return title(key) + "\n" + newTable([]string{"From", "To", "Marginal Rate"}, map[int]bool{0: true, 1: true, 2: true}, rows) + "\n", nil
}

func (cf *ConsoleFormatter) Schedule(schedule *domain.BracketSchedule) (string, error) {
	steps := make([]domain.RateStep, 0, schedule.Len())
	low := decimal.Zero
	for _, t := range schedule.Thresholds() {
		steps = append(steps, domain.RateStep{Low: low, High: t.Upper, Rate: t.Rate})
		low = t.Upper.Value()
	}
	return cf.Steps(schedule.Key(), steps)
}

func (cf *ConsoleFormatter) Keys(keys []domain.ScheduleKey) (string, error) {
	if len(keys) == 0 {
		return LabelStyle.Render("No schedules stored") + "\n", nil
	}
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k.Jurisdiction, k.FiscalYear, string(k.FilingStatus), k.FilingStatus.Slug()})
	}
	return newTable([]string{"Jurisdiction", "Year", "Filing Status", "Slug"}, nil, rows) + "\n", nil
}
