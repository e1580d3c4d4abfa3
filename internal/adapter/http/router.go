package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/corebank-io/corebank/internal/adapter/http/handler"
	"github.com/corebank-io/corebank/internal/adapter/http/middleware"
	"github.com/corebank-io/corebank/internal/infrastructure/auth"
	"github.com/corebank-io/corebank/internal/infrastructure/metrics"
	"github.com/corebank-io/corebank/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	CustomerHandler       *handler.CustomerHandler
	AccountHandler        *handler.AccountHandler
	MovementHandler       *handler.MovementHandler
	TransferHandler       *handler.TransferHandler
	StatementHandler      *handler.StatementHandler
	JournalHandler        *handler.JournalHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	IdempotencyTTL        time.Duration
	JWTManager            *auth.JWTManager
	Metrics               *metrics.Metrics
	Logger                zerolog.Logger
	RateLimit             float64
	RateBurst             int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Customer registration is the only unauthenticated endpoint; it
		// issues the bearer token used everywhere else.
		r.Post("/customers", cfg.CustomerHandler.Create)

		r.Group(func(r chi.Router) {
			if cfg.JWTManager != nil {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			} else {
				r.Use(middleware.FixedCaller())
			}

			r.Get("/customers/{id}", cfg.CustomerHandler.Get)

			// Accounts
			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", cfg.AccountHandler.Open)
				r.Get("/", cfg.AccountHandler.List)
				r.Get("/{id}", cfg.AccountHandler.Get)
				r.Post("/{id}/close", cfg.AccountHandler.Close)
				r.Get("/{id}/balance", cfg.AccountHandler.Balance)
				r.Post("/{id}/deposit", cfg.MovementHandler.Deposit)
				r.Post("/{id}/withdraw", cfg.MovementHandler.Withdraw)
				r.Get("/{id}/transactions", cfg.StatementHandler.ListTransactions)
				r.Get("/{id}/transfers", cfg.MovementHandler.ListTransfers)
				r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.VerifyAccount)
			})

			// Transfers
			r.Route("/transfers", func(r chi.Router) {
				r.Post("/", cfg.MovementHandler.Transfer)
				r.Post("/schedule", cfg.TransferHandler.Schedule)
				r.Get("/{id}", cfg.MovementHandler.GetTransfer)
				r.Post("/{id}/cancel", cfg.TransferHandler.Cancel)
				r.Post("/{id}/compensate", cfg.TransferHandler.Compensate)
			})

			// Transaction log lookup by operation reference
			r.Get("/transactions/{referenceID}", cfg.StatementHandler.GetByReference)

			// Journal reads
			r.Route("/journal", func(r chi.Router) {
				r.Get("/entries/{id}", cfg.JournalHandler.GetEntry)
				r.Get("/{reference}", cfg.JournalHandler.ListByReference)
			})

			// Operational runs
			r.Route("/admin", func(r chi.Router) {
				r.Post("/journal", cfg.JournalHandler.Post)
				r.Post("/reconciliation", cfg.ReconciliationHandler.Run)
				r.Post("/end-of-day", cfg.ReconciliationHandler.EndOfDay)
			})
		})
	})

	return r
}
