package domain

import (
	"github.com/shopspring/decimal"
)

// BreakdownRow is one bracket actually touched by an income
type BreakdownRow struct {
	BracketLow  decimal.Decimal `yaml:"bracket_low" json:"bracket_low"`
	BracketHigh Bound           `yaml:"bracket_high" json:"bracket_high"` // declared edge, open for the top bracket
	BracketRate decimal.Decimal `yaml:"bracket_rate" json:"bracket_rate"`
	BracketOwed decimal.Decimal `yaml:"bracket_owed" json:"bracket_owed"`
	CumOwedLow  decimal.Decimal `yaml:"cum_owed_low" json:"cum_owed_low"`
	CumOwedHigh decimal.Decimal `yaml:"cum_owed_high" json:"cum_owed_high"`
}

// CurvePoint is one sample of the cumulative liability curve
type CurvePoint struct {
	Income         decimal.Decimal `yaml:"income" json:"income"`
	CumulativeOwed decimal.Decimal `yaml:"cumulative_owed" json:"cumulative_owed"`
	MarginalRate   decimal.Decimal `yaml:"marginal_rate" json:"marginal_rate"`
}

// RateStep marks where a marginal rate starts; consecutive steps draw the
// step-after marginal rate graph.
type RateStep struct {
	Low  decimal.Decimal `yaml:"low" json:"low"`
	High Bound           `yaml:"high" json:"high"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// LiabilitySummary totals a breakdown
type LiabilitySummary struct {
	Key           ScheduleKey     `yaml:"key" json:"key"`
	Income        decimal.Decimal `yaml:"income" json:"income"`
	TotalOwed     decimal.Decimal `yaml:"total_owed" json:"total_owed"`
	EffectiveRate decimal.Decimal `yaml:"effective_rate" json:"effective_rate"`
	MarginalRate  decimal.Decimal `yaml:"marginal_rate" json:"marginal_rate"`
	Room          BracketRoom     `yaml:"room" json:"room"`
	Rows          []BreakdownRow  `yaml:"rows" json:"rows"`
}

// BracketRoom is the bracket an income falls in and how much more income it
// takes to reach the next rate. NextRate is nil in the open top bracket.
type BracketRoom struct {
	BracketLow  decimal.Decimal  `yaml:"bracket_low" json:"bracket_low"`
	BracketHigh Bound            `yaml:"bracket_high" json:"bracket_high"`
	Rate        decimal.Decimal  `yaml:"rate" json:"rate"`
	Room        decimal.Decimal  `yaml:"room" json:"room"`
	NextRate    *decimal.Decimal `yaml:"next_rate,omitempty" json:"next_rate,omitempty"`
}
