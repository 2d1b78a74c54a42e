package domain

import (
	"strings"
)

// FilingStatus identifies which schedule of a jurisdiction/year applies.
// The value is the label used by the historical source tables and by the
// store layout.
type FilingStatus string

const (
	SingleFiler             FilingStatus = "Single Filer"
	MarriedFilingJointly    FilingStatus = "Married Filing Jointly"
	MarriedFilingSeparately FilingStatus = "Married Filing Separately"
	HeadOfHousehold         FilingStatus = "Head of Household"
)

// filingStatuses is the closed set, in the order headers are matched.
// New statuses are added here, not by changing any structure.
var filingStatuses = []FilingStatus{
	SingleFiler,
	MarriedFilingJointly,
	MarriedFilingSeparately,
	HeadOfHousehold,
}

var filingStatusSlugs = map[string]FilingStatus{
	"single":                    SingleFiler,
	"single_filer":              SingleFiler,
	"mfj":                       MarriedFilingJointly,
	"married_filing_jointly":    MarriedFilingJointly,
	"mfs":                       MarriedFilingSeparately,
	"married_filing_separately": MarriedFilingSeparately,
	"hoh":                       HeadOfHousehold,
	"head_of_household":         HeadOfHousehold,
}

// FilingStatuses returns every recognized filing status
func FilingStatuses() []FilingStatus {
	return append([]FilingStatus(nil), filingStatuses...)
}

// Label returns the human readable label
func (fs FilingStatus) Label() string { return string(fs) }

// Slug returns the short form used by CLI flags and URLs
func (fs FilingStatus) Slug() string {
	switch fs {
	case SingleFiler:
		return "single"
	case MarriedFilingJointly:
		return "mfj"
	case MarriedFilingSeparately:
		return "mfs"
	case HeadOfHousehold:
		return "hoh"
	default:
		return strings.ToLower(strings.ReplaceAll(string(fs), " ", "_"))
	}
}

// IsValid reports whether fs is one of the recognized statuses
func (fs FilingStatus) IsValid() bool {
	for _, known := range filingStatuses {
		if fs == known {
			return true
		}
	}
	return false
}

// IdentifyFilingStatus finds the filing status whose label appears in a
// source column header, e.g. "Single Filer (Rates/Brackets)".
func IdentifyFilingStatus(header string) (FilingStatus, error) {
	for _, fs := range filingStatuses {
		if strings.Contains(header, string(fs)) {
			return fs, nil
		}
	}
	return "", &TaxError{
		Kind:    KindUnrecognizedFilingStatus,
		Op:      "identify_filing_status",
		Message: "column header " + quote(header) + " matches none of " + labelList(),
	}
}

// ParseFilingStatus accepts a label ("Head of Household") or a slug ("hoh").
func ParseFilingStatus(s string) (FilingStatus, error) {
	trimmed := strings.TrimSpace(s)
	for _, fs := range filingStatuses {
		if strings.EqualFold(trimmed, string(fs)) {
			return fs, nil
		}
	}
	slug := strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(trimmed))
	if fs, ok := filingStatusSlugs[slug]; ok {
		return fs, nil
	}
	return "", &TaxError{
		Kind:    KindInvalidInput,
		Op:      "parse_filing_status",
		Message: "unknown filing status " + quote(s) + " (valid: single, mfj, mfs, hoh)",
	}
}

func labelList() string {
	labels := make([]string, len(filingStatuses))
	for i, fs := range filingStatuses {
		labels[i] = quote(string(fs))
	}
	return "[" + strings.Join(labels, ", ") + "]"
}

func quote(s string) string { return "\"" + s + "\"" }
