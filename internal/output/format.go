package output

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders engine results for one output format
type Formatter interface {
	Summary(summary *domain.LiabilitySummary) (string, error)
	Curve(key domain.ScheduleKey, points []domain.CurvePoint) (string, error)
	Steps(key domain.ScheduleKey, steps []domain.RateStep) (string, error)
	Schedule(schedule *domain.BracketSchedule) (string, error)
	Keys(keys []domain.ScheduleKey) (string, error)
}

// Formats lists the accepted --format values
var Formats = []string{"console", "csv", "json", "yaml"}

// NewFormatter returns the formatter for name
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "console", "":
		return &ConsoleFormatter{ChartWidth: 72, ChartHeight: 16}, nil
	case "csv":
		return &CSVFormatter{}, nil
	case "json":
		return &JSONFormatter{Pretty: true}, nil
	case "yaml", "yml":
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (valid: %s)", name, strings.Join(Formats, ", "))
	}
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a rate fraction (0.12) as a percentage (12.00%)
func FormatPercentage(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// FormatBound formats a bracket edge, with the open edge shown as "and up"
func FormatBound(b domain.Bound) string {
	if b.IsOpen() {
		return "and up"
	}
	return FormatCurrency(b.Value())
}

// scheduleView is the structured form of a schedule for json and yaml
type scheduleView struct {
	Key      domain.ScheduleKey        `yaml:"key" json:"key"`
	Brackets []domain.BracketThreshold `yaml:"brackets" json:"brackets"`
}

type curveView struct {
	Key    domain.ScheduleKey  `yaml:"key" json:"key"`
	Points []domain.CurvePoint `yaml:"points" json:"points"`
}

type stepsView struct {
	Key   domain.ScheduleKey `yaml:"key" json:"key"`
	Steps []domain.RateStep  `yaml:"steps" json:"steps"`
}

func newScheduleView(s *domain.BracketSchedule) scheduleView {
	return scheduleView{Key: s.Key(), Brackets: s.Thresholds()}
}
