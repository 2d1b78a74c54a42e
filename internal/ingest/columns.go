package ingest

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxcurve/internal/domain"
)

const (
	yearHeader  = "Year"
	notesPrefix = "Notes"

	// groupWidth is rate, comparison annotation (">"), income threshold
	groupWidth = 3
)

// columnGroup is one filing status's repeating triplet of source columns
type columnGroup struct {
	header  string
	status  domain.FilingStatus
	columns []int
}

func (g columnGroup) rateColumn() int      { return g.columns[0] }
func (g columnGroup) thresholdColumn() int { return g.columns[2] }

// tableLayout records where the required columns and the filing status
// groups sit in the header row
type tableLayout struct {
	year   int
	notes  int
	groups []columnGroup
}

// locateRequiredColumns finds Year (exact, case-insensitive) and Notes
// (prefix, e.g. "Notes:"). Missing either aborts the whole run.
func locateRequiredColumns(header []string) (year, notes int, err error) {
	year, notes = -1, -1
	for i, h := range header {
		name := strings.TrimSpace(h)
		switch {
		case year < 0 && strings.EqualFold(name, yearHeader):
			year = i
		case notes < 0 && len(name) >= len(notesPrefix) && strings.EqualFold(name[:len(notesPrefix)], notesPrefix):
			notes = i
		}
	}
	var missing []string
	if year < 0 {
		missing = append(missing, yearHeader)
	}
	if notes < 0 {
		missing = append(missing, notesPrefix)
	}
	if len(missing) > 0 {
		return -1, -1, domain.NewError(domain.KindMissingRequiredColumn, "locate_columns",
			fmt.Sprintf("source table has no %s column", strings.Join(missing, " or ")))
	}
	return year, notes, nil
}

// partitionColumns splits the header into filing status groups. A non-empty
// header opens a group and the empty-header columns after it join that
// group; Year and Notes close whatever group is open. Groups that cannot be
// identified or have the wrong width are reported and left out.
func partitionColumns(header []string, year, notes int) ([]columnGroup, []error) {
	var raw []columnGroup
	open := -1
	for i, h := range header {
		name := strings.TrimSpace(h)
		switch {
		case i == year || i == notes:
			open = -1
		case name != "":
			raw = append(raw, columnGroup{header: name, columns: []int{i}})
			open = len(raw) - 1
		case open >= 0:
			raw[open].columns = append(raw[open].columns, i)
		}
	}

	var groups []columnGroup
	var errs []error
	seen := make(map[domain.FilingStatus]string)
	for _, g := range raw {
		status, err := domain.IdentifyFilingStatus(g.header)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(g.columns) != groupWidth {
			errs = append(errs, domain.NewError(domain.KindMalformedFieldFormat, "partition_columns",
				fmt.Sprintf("column group %q spans %d columns, want %d", g.header, len(g.columns), groupWidth)))
			continue
		}
		if previous, ok := seen[status]; ok {
			errs = append(errs, domain.NewError(domain.KindMalformedFieldFormat, "partition_columns",
				fmt.Sprintf("column group %q repeats %s already read from %q", g.header, status, previous)))
			continue
		}
		seen[status] = g.header
		g.status = status
		groups = append(groups, g)
	}
	return groups, errs
}
