package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/fincore/internal/adapter/http/handler"
	"github.com/iho/fincore/internal/adapter/http/middleware"
	"github.com/iho/fincore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Logger           zerolog.Logger
	MovementHandler  *handler.MovementHandler
	EntityHandler    *handler.EntityHandler
	RecurringHandler *handler.RecurringHandler
	DebtHandler      *handler.DebtHandler
	BudgetHandler    *handler.BudgetHandler
	GoalHandler      *handler.GoalHandler
	ReportHandler    *handler.ReportHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Route("/movements", func(r chi.Router) {
			r.Post("/", cfg.MovementHandler.Create)
			r.Get("/", cfg.MovementHandler.List)
			r.Get("/{id}", cfg.MovementHandler.Get)
			r.Put("/{id}", cfg.MovementHandler.Update)
			r.Delete("/{id}", cfg.MovementHandler.Delete)
		})

		r.Route("/entities", func(r chi.Router) {
			r.Post("/", cfg.EntityHandler.Create)
			r.Get("/", cfg.EntityHandler.List)
			r.Get("/{id}", cfg.EntityHandler.Get)
		})

		r.Route("/recurring", func(r chi.Router) {
			r.Post("/", cfg.RecurringHandler.Create)
			r.Get("/", cfg.RecurringHandler.List)
			r.Get("/due", cfg.RecurringHandler.Due)
			r.Post("/run", cfg.RecurringHandler.RunDue)
			r.Get("/pending", cfg.RecurringHandler.Pending)
			r.Get("/{id}", cfg.RecurringHandler.Get)
			r.Post("/{id}/pause", cfg.RecurringHandler.Pause)
			r.Post("/{id}/resume", cfg.RecurringHandler.Resume)
			r.Post("/{id}/postings/{label}/confirm", cfg.RecurringHandler.Confirm)
		})

		r.Route("/debts", func(r chi.Router) {
			r.Post("/", cfg.DebtHandler.Create)
			r.Get("/", cfg.DebtHandler.List)
			r.Post("/overdue", cfg.DebtHandler.MarkOverdue)
			r.Get("/{id}", cfg.DebtHandler.Get)
			r.Get("/{id}/schedule.xlsx", cfg.DebtHandler.Schedule)
			r.Post("/{id}/payments", cfg.DebtHandler.Pay)
			r.Post("/{id}/prepay", cfg.DebtHandler.Prepay)
			r.Post("/{id}/rate", cfg.DebtHandler.ChangeRate)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Post("/", cfg.BudgetHandler.Create)
			r.Get("/", cfg.BudgetHandler.List)
			r.Get("/status", cfg.BudgetHandler.Statuses)
			r.Get("/{id}", cfg.BudgetHandler.Get)
			r.Get("/{id}/status", cfg.BudgetHandler.Status)
			r.Get("/{id}/alerts", cfg.BudgetHandler.Alerts)
			r.Post("/{id}/alerts/dismiss", cfg.BudgetHandler.DismissAlert)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Post("/", cfg.GoalHandler.Create)
			r.Get("/", cfg.GoalHandler.List)
			r.Post("/{id}/contributions", cfg.GoalHandler.Contribute)
			r.Get("/{id}/progress", cfg.GoalHandler.Progress)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/analytics", cfg.ReportHandler.Analytics)
			r.Get("/health", cfg.ReportHandler.Health)
			r.Get("/forecast", cfg.ReportHandler.Forecast)
		})
	})

	return r
}
