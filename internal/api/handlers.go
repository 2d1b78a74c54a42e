package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rgehrsitz/taxcurve/internal/calculation"
	"github.com/rgehrsitz/taxcurve/internal/config"
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/logging"
	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/shopspring/decimal"
)

// maxPointsPerBracket bounds the curve query so one request cannot allocate
// an arbitrarily large response.
const maxPointsPerBracket = 1000

// Handler holds the dependencies shared by every endpoint
type Handler struct {
	cache    *store.Cache
	sampling config.SamplingConfig
	logger   logging.Logger
}

// NewHandler serves reads through cache using the given sampling defaults
func NewHandler(cache *store.Cache, sampling config.SamplingConfig) *Handler {
	return &Handler{cache: cache, sampling: sampling, logger: logging.NopLogger{}}
}

// SetLogger sets the logger used for server-side failures
func (h *Handler) SetLogger(l logging.Logger) {
	h.logger = logging.OrNop(l)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSchedules returns every stored key in canonical order
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	keys, err := h.cache.List(r.Context())
	if err != nil {
		h.writeDomainError(w, "failed to list schedules", err)
		return
	}
	if keys == nil {
		keys = []domain.ScheduleKey{}
	}
	writeJSON(w, http.StatusOK, ListSchedulesResponse{Schedules: keys, Count: len(keys)})
}

// GetSchedule returns the schedule in its storage wire form, tagged with
// the payload digest as ETag.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, ok := h.loadSchedule(w, r)
	if !ok {
		return
	}
	payload, err := store.MarshalSchedule(schedule)
	if err != nil {
		h.writeDomainError(w, "failed to encode schedule", err)
		return
	}

	etag := `"` + store.Digest(payload) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// GetBreakdown computes the liability summary for ?income=
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	income, err := decimalParam(r, "income")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid income", err)
		return
	}
	if income == nil {
		writeError(w, http.StatusBadRequest, "income is required", nil)
		return
	}

	schedule, ok := h.loadSchedule(w, r)
	if !ok {
		return
	}
	summary, err := calculation.Summarize(*income, schedule)
	if err != nil {
		h.writeDomainError(w, "failed to compute breakdown", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetCurve samples the cumulative liability curve. The ceiling defaults to
// the highest finite threshold scaled by the configured buffer.
func (h *Handler) GetCurve(w http.ResponseWriter, r *http.Request) {
	ceiling, err := decimalParam(r, "ceiling")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ceiling", err)
		return
	}
	points := h.sampling.PointsPerBracket
	if raw := r.URL.Query().Get("points"); raw != "" {
		points, err = strconv.Atoi(raw)
		if err != nil || points < 1 || points > maxPointsPerBracket {
			writeError(w, http.StatusBadRequest, "invalid points", errors.New("points must be an integer between 1 and 1000"))
			return
		}
	}

	schedule, ok := h.loadSchedule(w, r)
	if !ok {
		return
	}
	if ceiling == nil {
		c, err := calculation.DefaultCeiling(schedule, h.sampling.CeilingBuffer)
		if err != nil {
			h.writeDomainError(w, "no default ceiling; pass ?ceiling=", err)
			return
		}
		ceiling = &c
	}

	samples, err := calculation.SampleCurve(*ceiling, schedule, points)
	if err != nil {
		h.writeDomainError(w, "failed to sample curve", err)
		return
	}
	writeJSON(w, http.StatusOK, CurveResponse{
		Key:              schedule.Key(),
		Ceiling:          *ceiling,
		PointsPerBracket: points,
		Points:           samples,
	})
}

// GetSteps returns the marginal rate steps
func (h *Handler) GetSteps(w http.ResponseWriter, r *http.Request) {
	schedule, ok := h.loadSchedule(w, r)
	if !ok {
		return
	}
	steps, err := calculation.RateSteps(schedule)
	if err != nil {
		h.writeDomainError(w, "failed to compute rate steps", err)
		return
	}
	writeJSON(w, http.StatusOK, StepsResponse{Key: schedule.Key(), Steps: steps})
}

// InvalidateCache drops one key when the body names one, otherwise purges
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req == (InvalidateRequest{}) {
		h.cache.Purge()
		writeJSON(w, http.StatusOK, InvalidateResponse{Purged: true})
		return
	}

	key, err := parseKey(req.Jurisdiction, req.FiscalYear, req.FilingStatus)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid key", err)
		return
	}
	h.cache.Invalidate(key)
	writeJSON(w, http.StatusOK, InvalidateResponse{Invalidated: &key})
}

// CacheStats reports cache entry and hit counts
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.Stats())
}

// =============================================================================
// HELPERS
// =============================================================================

// loadSchedule resolves the key from the URL and reads it through the cache,
// writing the error response itself when it fails.
func (h *Handler) loadSchedule(w http.ResponseWriter, r *http.Request) (*domain.BracketSchedule, bool) {
	jurisdiction, err := url.PathUnescape(chi.URLParam(r, "jurisdiction"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid jurisdiction", err)
		return nil, false
	}
	key, err := parseKey(jurisdiction, chi.URLParam(r, "year"), chi.URLParam(r, "status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid key", err)
		return nil, false
	}

	schedule, err := h.cache.Get(r.Context(), key)
	if err != nil {
		h.writeDomainError(w, "failed to load schedule", err)
		return nil, false
	}
	return schedule, true
}

func parseKey(jurisdiction, year, status string) (domain.ScheduleKey, error) {
	fs, err := domain.ParseFilingStatus(status)
	if err != nil {
		return domain.ScheduleKey{}, err
	}
	key := domain.ScheduleKey{Jurisdiction: jurisdiction, FiscalYear: year, FilingStatus: fs}
	return key, key.Validate()
}

// decimalParam returns nil when the parameter is absent
func decimalParam(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// statusFor maps a domain error kind to an HTTP status
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindDataNotFound:
		return http.StatusNotFound
	case domain.KindInvalidSchedule:
		return http.StatusUnprocessableEntity
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Errorf("%s: %v", message, err)
	}
	resp := ErrorResponse{Error: message, Details: err.Error()}
	if kind := domain.KindOf(err); kind != domain.KindUnknown {
		resp.Code = kind.String()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
