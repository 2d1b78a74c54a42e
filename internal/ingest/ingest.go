// Package ingest turns the wide historical rate table (one row per year and
// bracket, one column triplet per filing status) into canonical bracket
// schedules and writes them to a schedule store.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/logging"
	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/shopspring/decimal"
)

// Ingestor parses source tables for one jurisdiction
type Ingestor struct {
	jurisdiction string
	logger       logging.Logger
}

// NewIngestor creates an ingestor; an empty jurisdiction means the default
func NewIngestor(jurisdiction string) *Ingestor {
	if jurisdiction == "" {
		jurisdiction = domain.DefaultJurisdiction
	}
	return &Ingestor{jurisdiction: jurisdiction, logger: logging.NopLogger{}}
}

// SetLogger sets the logger; nil restores the no-op logger
func (in *Ingestor) SetLogger(l logging.Logger) {
	in.logger = logging.OrNop(l)
}

// Result holds every schedule that parsed and validated, plus the errors of
// the groups, rows and schedules that did not. Errors never abort other work.
type Result struct {
	Schedules []*domain.BracketSchedule
	Errors    []error
}

// Report summarizes a Run
type Report struct {
	Written   []domain.ScheduleKey
	Unchanged []domain.ScheduleKey
	Errors    []error
}

// sourceRow is one data row that survived the empty-field filter
type sourceRow struct {
	line   int
	fields []string
}

// rawBracket is a parsed row before the threshold shift
type rawBracket struct {
	rate      decimal.Decimal
	threshold decimal.Decimal
}

// Parse reads a source table and returns the canonical schedules it holds.
// Only a table that cannot be read or lacks the Year/Notes columns fails
// the whole call.
func (in *Ingestor) Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.NewError(domain.KindMissingRequiredColumn, "read_table", "source table is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	yearCol, notesCol, err := locateRequiredColumns(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	groups, groupErrs := partitionColumns(header, yearCol, notesCol)
	for _, e := range groupErrs {
		in.logger.Warnf("skipping column group: %v", e)
	}
	result.Errors = append(result.Errors, groupErrs...)

	// Rows grouped by year, years in first-appearance order. A year with an
	// incomplete row is dropped whole.
	var years []string
	byYear := make(map[string][]sourceRow)
	incomplete := make(map[string]bool)
	dropped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read source table: %w", err)
		}
		line, _ := reader.FieldPos(0)
		fields := normalizeWidth(record, len(header))
		year := strings.TrimSpace(fields[yearCol])
		if hasEmptyField(fields, notesCol) {
			dropped++
			if year != "" {
				incomplete[year] = true
			}
			continue
		}
		if _, ok := byYear[year]; !ok {
			years = append(years, year)
		}
		byYear[year] = append(byYear[year], sourceRow{line: line, fields: fields})
	}
	in.logger.Debugf("read %d years, dropped %d incomplete rows", len(years), dropped)

	for _, year := range years {
		if incomplete[year] {
			in.logger.Warnf("skipping year %s: it has an incomplete row", year)
			continue
		}
		for _, group := range groups {
			schedule, errs := in.parseGroup(year, group, byYear[year])
			result.Errors = append(result.Errors, errs...)
			if schedule != nil {
				result.Schedules = append(result.Schedules, schedule)
			}
		}
	}
	return result, nil
}

// parseGroup builds the schedule for one year of one filing status group.
// Every malformed cell is reported, and any of them keeps the group's year
// from producing a schedule.
func (in *Ingestor) parseGroup(year string, group columnGroup, rows []sourceRow) (*domain.BracketSchedule, []error) {
	var errs []error
	brackets := make([]rawBracket, 0, len(rows))
	for _, row := range rows {
		rateCell := row.fields[group.rateColumn()]
		rate, ok := parsePercent(rateCell)
		if !ok {
			errs = append(errs, malformedCell(group, year, row.line, rateCell, "percentage"))
			continue
		}
		thresholdCell := row.fields[group.thresholdColumn()]
		threshold, ok := parseCurrency(thresholdCell)
		if !ok {
			errs = append(errs, malformedCell(group, year, row.line, thresholdCell, "currency amount"))
			continue
		}
		brackets = append(brackets, rawBracket{rate: rate, threshold: threshold})
	}
	key := domain.ScheduleKey{Jurisdiction: in.jurisdiction, FiscalYear: year, FilingStatus: group.status}
	if len(errs) > 0 {
		in.logger.Warnf("discarding %s: %d malformed rows", key, len(errs))
		return nil, errs
	}
	if len(brackets) == 0 {
		return nil, nil
	}

	schedule, err := domain.NewBracketSchedule(key, thresholdBelongsToPriorRate(brackets))
	if err != nil {
		in.logger.Warnf("discarding %s: %v", key, err)
		return nil, append(errs, err)
	}
	return schedule, errs
}

// thresholdBelongsToPriorRate re-pairs the source columns. The table lists
// each rate next to the income where that rate starts, which is the upper
// bound of the bracket before it; so row i's rate takes row i+1's threshold
// and the last rate gets the open bound.
func thresholdBelongsToPriorRate(rows []rawBracket) []domain.BracketThreshold {
	thresholds := make([]domain.BracketThreshold, len(rows))
	for i, row := range rows {
		upper := domain.Unbounded()
		if i+1 < len(rows) {
			upper = domain.Finite(rows[i+1].threshold)
		}
		thresholds[i] = domain.BracketThreshold{Upper: upper, Rate: row.rate}
	}
	return thresholds
}

func malformedCell(group columnGroup, year string, line int, cell, want string) error {
	return domain.NewError(domain.KindMalformedFieldFormat, "parse_cell",
		fmt.Sprintf("column %q year %s line %d: cannot parse %q as a %s", group.header, year, line, cell, want))
}

// normalizeWidth pads short records and trims long ones to the header width
func normalizeWidth(record []string, width int) []string {
	if len(record) == width {
		return record
	}
	fields := make([]string, width)
	copy(fields, record)
	return fields
}

func hasEmptyField(fields []string, skip int) bool {
	for i, f := range fields {
		if i != skip && strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

// Run parses the table and writes every schedule to w. Store failures are
// collected per schedule like parse failures.
func (in *Ingestor) Run(ctx context.Context, r io.Reader, w store.Writer) (*Report, error) {
	result, err := in.Parse(r)
	if err != nil {
		return nil, err
	}

	report := &Report{Errors: result.Errors}
	for _, schedule := range result.Schedules {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome, err := w.Put(ctx, schedule)
		if err != nil {
			in.logger.Errorf("failed to store %s: %v", schedule.Key(), err)
			report.Errors = append(report.Errors, fmt.Errorf("failed to store %s: %w", schedule.Key(), err))
			continue
		}
		if outcome == store.Unchanged {
			report.Unchanged = append(report.Unchanged, schedule.Key())
		} else {
			report.Written = append(report.Written, schedule.Key())
		}
	}
	in.logger.Infof("ingested %d schedules (%d written, %d unchanged, %d errors)",
		len(result.Schedules), len(report.Written), len(report.Unchanged), len(report.Errors))
	return report, nil
}
