/*
Package api serves stored bracket schedules and computed liabilities as JSON.

ROUTES:

	GET  /healthz
	GET  /api/schedules                                       List stored keys
	GET  /api/schedules/{jurisdiction}/{year}/{status}        Schedule wire form
	GET  /api/schedules/{jurisdiction}/{year}/{status}/breakdown?income=
	GET  /api/schedules/{jurisdiction}/{year}/{status}/curve?ceiling=&points=
	GET  /api/schedules/{jurisdiction}/{year}/{status}/steps
	POST /api/cache/invalidate                                Purge or drop one key
	GET  /api/cache/stats

{status} takes either the label ("Head of Household") or a slug ("hoh").

ERRORS:
  - 400: bad query parameters or key
  - 404: no schedule stored for the key
  - 422: stored schedule is malformed
  - 500: anything else

The API is read-only apart from the cache. Schedules are written by the ingest
and import commands.
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.ListSchedules)
			r.Route("/{jurisdiction}/{year}/{status}", func(r chi.Router) {
				r.Get("/", h.GetSchedule)
				r.Get("/breakdown", h.GetBreakdown)
				r.Get("/curve", h.GetCurve)
				r.Get("/steps", h.GetSteps)
			})
		})

		r.Route("/cache", func(r chi.Router) {
			r.Post("/invalidate", h.InvalidateCache)
			r.Get("/stats", h.CacheStats)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found", nil)
	})

	return r
}
