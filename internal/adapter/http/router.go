package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/adapter/http/handler"
	"github.com/iho/gobank/internal/adapter/http/middleware"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/metrics"
	"github.com/iho/gobank/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	RestrictionHandler    *handler.RestrictionHandler
	TransactionHandler    *handler.TransactionHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter

	// TokenVerifier enables bearer authentication on the API when set.
	TokenVerifier middleware.TokenVerifier

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	CORSOrigins    []string
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}
	r.Use(cors.Handler(corsOptions(cfg.CORSOrigins)))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	moveMoney := middleware.RequireRole(domain.Role.CanMoveMoney)
	manage := middleware.RequireRole(domain.Role.CanManageAccounts)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
		}
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.With(moveMoney).Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)

			r.Route("/{number}", func(r chi.Router) {
				r.Get("/", cfg.AccountHandler.Get)
				r.Get("/movements", cfg.AccountHandler.Movements)
				r.Get("/transactions", cfg.AccountHandler.Transactions)

				r.With(manage).Post("/cancel", cfg.AccountHandler.Cancel)
				r.With(manage).Post("/block", cfg.AccountHandler.Block)
				r.With(manage).Post("/activate", cfg.AccountHandler.Activate)
				r.With(manage).Get("/reconciliation", cfg.ReconciliationHandler.Account)

				r.Route("/restrictions", func(r chi.Router) {
					r.Get("/", cfg.RestrictionHandler.List)
					r.With(manage).Post("/", cfg.RestrictionHandler.Add)
					r.With(manage).Put("/{restrictionID}", cfg.RestrictionHandler.Update)
					r.With(manage).Delete("/{restrictionID}", cfg.RestrictionHandler.Remove)
				})
			})
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(moveMoney)
				r.Post("/transfers", cfg.TransactionHandler.Transfer)
				r.Post("/transfers/quote", cfg.TransactionHandler.Quote)
				r.Post("/deposits", cfg.TransactionHandler.Deposit)
				r.Post("/withdrawals", cfg.TransactionHandler.Withdraw)
				r.Post("/{number}/authorize", cfg.TransactionHandler.Authorize)
				r.Post("/{number}/cancel", cfg.TransactionHandler.Cancel)
			})
			r.Get("/{number}", cfg.TransactionHandler.Get)
		})

		r.With(manage).Get("/reconciliation", cfg.ReconciliationHandler.Report)
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
		ExposedHeaders: []string{"X-Request-Id", "X-Idempotency-Replay"},
		MaxAge:         300,
	}
}
