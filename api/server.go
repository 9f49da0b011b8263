/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. httplog:    Structured request logging over slog (ECS schema)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /api/employees/*   Employee master data and attendance inputs
  /api/holidays      Company holidays
  /api/rules/*       Deduction rule administration
  /api/reports/*     Monthly computation and summary retrieval
  /api/seed          Demo data loader (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "allowance-engine"),
	)

	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Heartbeat("/healthz"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Post("/{id}/events", h.RecordEvent)
			r.Post("/{id}/leaves", h.RecordLeave)
			r.Post("/{id}/deductions", h.RecordManualDeduction)
			r.Get("/{id}/report", h.GetEmployeeReport)
			r.Get("/{id}/report/xlsx", h.GetEmployeeReportXLSX)
			r.Get("/{id}/report/pdf", h.GetEmployeeReportPDF)
		})

		r.Post("/holidays", h.CreateHoliday)

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Put("/{code}", h.UpdateRule)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/{month}/run", h.RunRoster)
			r.Get("/{month}", h.ListSummaries)
		})

		r.Post("/seed", h.LoadSeedData)
	})

	return r
}
