/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:   Unique ID per request for tracing
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. Logger:      Request logging (zap)
  4. Instrument:  Prometheus request metrics
  5. CORS:        Cross-origin requests for frontends

ROUTE GROUPS:
  /api/calculate        Stateless calculation
  /api/schoolyears/*    School years, employments, workloads
  /api/admin/*          Admin operations
  /api/scenarios/*      Demo scenarios
  /api/reset            Database reset (dev only)
  /metrics              Prometheus
  /healthz              Liveness

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSOrigins are the origins allowed by default.
var CORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(h.Logger))
	r.Use(Instrument(h.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", h.Calculate)

		// School year routes
		r.Route("/schoolyears", func(r chi.Router) {
			r.Get("/", h.ListSchoolYears)
			r.Post("/", h.CreateSchoolYear)
			r.Get("/{id}", h.GetSchoolYear)
			r.Post("/{id}/employments", h.CreateEmployment)
			r.Get("/{id}/workloads", h.ListWorkloads)
			r.Get("/{id}/workloads/{teacherID}", h.GetWorkload)
			r.Get("/{id}/workloads/{teacherID}/snapshot", h.GetLatestSnapshot)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/snapshots", h.TriggerSnapshots)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})

		r.Post("/reset", h.ResetDatabase)
	})

	return r
}
