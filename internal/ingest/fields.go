package ingest

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred          = decimal.NewFromInt(100)
	percentReplacer  = strings.NewReplacer("%", "", " ", "")
	currencyReplacer = strings.NewReplacer("$", "", ",", "", " ", "")
)

// parsePercent turns "10.00%" into 0.1
func parsePercent(cell string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(percentReplacer.Replace(strings.TrimSpace(cell)))
	if err != nil {
		return decimal.Zero, false
	}
	return v.Div(hundred), true
}

// parseCurrency turns "$19,050" into 19050
func parseCurrency(cell string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(currencyReplacer.Replace(strings.TrimSpace(cell)))
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
