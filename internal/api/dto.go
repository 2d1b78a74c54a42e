package api

import (
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ListSchedulesResponse lists every stored key
type ListSchedulesResponse struct {
	Schedules []domain.ScheduleKey `json:"schedules"`
	Count     int                  `json:"count"`
}

// CurveResponse carries curve samples with the parameters that produced them
type CurveResponse struct {
	Key              domain.ScheduleKey  `json:"key"`
	Ceiling          decimal.Decimal     `json:"ceiling"`
	PointsPerBracket int                 `json:"points_per_bracket"`
	Points           []domain.CurvePoint `json:"points"`
}

// StepsResponse is the step-after marginal rate graph
type StepsResponse struct {
	Key   domain.ScheduleKey `json:"key"`
	Steps []domain.RateStep  `json:"steps"`
}

// InvalidateRequest names one key to drop. An empty body purges everything.
type InvalidateRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	FiscalYear   string `json:"fiscal_year"`
	FilingStatus string `json:"filing_status"`
}

// InvalidateResponse reports what was dropped
type InvalidateResponse struct {
	Purged      bool                `json:"purged"`
	Invalidated *domain.ScheduleKey `json:"invalidated,omitempty"`
}
