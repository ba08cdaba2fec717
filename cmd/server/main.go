package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/adapter/accountsvc"
	"github.com/iho/gobank/internal/adapter/bus"
	httpAdapter "github.com/iho/gobank/internal/adapter/http"
	"github.com/iho/gobank/internal/adapter/http/handler"
	"github.com/iho/gobank/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/gobank/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gobank/internal/adapter/repository/redis"
	"github.com/iho/gobank/internal/infrastructure/auth"
	"github.com/iho/gobank/internal/infrastructure/config"
	"github.com/iho/gobank/internal/infrastructure/eventpublisher"
	"github.com/iho/gobank/internal/infrastructure/locker"
	"github.com/iho/gobank/internal/infrastructure/logger"
	"github.com/iho/gobank/internal/infrastructure/metrics"
	"github.com/iho/gobank/internal/infrastructure/postgres"
	"github.com/iho/gobank/internal/infrastructure/ratelimit"
	"github.com/iho/gobank/internal/infrastructure/redis"
	"github.com/iho/gobank/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "gobank",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.MigrateOnStart {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return err
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Connect to the message bus
	conn, err := bus.Dial(ctx, cfg.AMQPURL, cfg.AMQPDialTimeout, log)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info().Msg("connected to amqp")

	m := metrics.New()

	clientCh, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open client channel: %w", err)
	}
	busClient, err := bus.NewClient(clientCh, bus.ClientConfig{
		Timeout:            cfg.CollaboratorTimeout,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	}, m, log)
	if err != nil {
		return fmt.Errorf("failed to start bus client: %w", err)
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	restrictionRepo := postgresRepo.NewRestrictionRepository(pool)
	movementRepo := postgresRepo.NewMovementRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	retrier := postgresRepo.NewRetrier(log)
	idGen := postgresRepo.NewULIDGenerator()
	numbers := postgresRepo.NewRandomNumberGenerator()

	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	locks := settlementLocker(cfg, redisClient, log)

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(
		txManager, accountRepo, restrictionRepo, movementRepo, outboxRepo,
		ownerDirectory(cfg, busClient, cache, log),
		idGen, numbers, retrier, m,
	)
	accounts := accountService(cfg, accountUC, busClient)
	ledger := usecase.NewTransactionUseCase(txManager, transactionRepo, outboxRepo, idGen, numbers, retrier)

	attempts := ratelimit.NewAttemptLimiter(attemptLimiterConfig(cfg))
	orchestrator := usecase.NewOrchestratorUseCase(usecase.OrchestratorConfig{
		Accounts:            accounts,
		Ledger:              ledger,
		Patterns:            patternValidator(cfg, busClient),
		Limiter:             attempts,
		Locker:              locks,
		Metrics:             m,
		Logger:              log,
		CollaboratorTimeout: cfg.CollaboratorTimeout,
	})
	reconciler := usecase.NewReconciliationUseCase(accountRepo, movementRepo, ledger, accounts, m, log, cfg.PendingTTL)

	// Serve account commands so the store can be reached over the bus
	serverCh, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open server channel: %w", err)
	}
	busServer := bus.NewServer(serverCh, cfg.CollaboratorTimeout, log)
	bus.RegisterAccountHandlers(busServer, accountUC)

	// Outbox relay
	publisher, err := eventPublisher(cfg, conn, log)
	if err != nil {
		return err
	}
	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo:  outboxRepo,
		Publisher:   publisher,
		Logger:      log,
		BatchSize:   cfg.OutboxBatchSize,
		MaxAttempts: cfg.OutboxAttempts,
		Interval:    cfg.OutboxInterval,
		Retention:   cfg.OutboxRetention,
	})

	// HTTP
	rateLimiter := middleware.NewRateLimiter(cfg.HTTPRateLimit, cfg.HTTPRateBurst, m)
	health := handler.NewHealthHandler().
		Register("postgres", pool.Ping).
		Register("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }).
		Register("amqp", amqpCheck(conn))

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC, ledger),
		RestrictionHandler:    handler.NewRestrictionHandler(accountUC),
		TransactionHandler:    handler.NewTransactionHandler(orchestrator, ledger, accountUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciler, accountUC),
		HealthHandler:         health,
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		RateLimiter:           rateLimiter,
		Metrics:               m,
		CORSOrigins:           cfg.CORSOrigins,
		Logger:                log,
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Background workers
	go attempts.Run(ctx, time.Minute)
	go rateLimiter.Run(ctx, time.Minute, 10*time.Minute)
	go reconciler.Run(ctx, cfg.ReconcileInterval)
	go func() {
		if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("outbox relay stopped")
		}
	}()
	go func() {
		if err := busServer.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("bus server stopped")
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("accounts_mode", cfg.AccountsMode).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// accountService picks how the orchestrator reaches the account store.
func accountService(cfg *config.Config, local *usecase.AccountUseCase, caller bus.Caller) usecase.AccountService {
	if cfg.AccountsMode == config.AccountsModeBus {
		return bus.NewAccountClient(caller)
	}
	return accountsvc.NewLocal(local)
}

func patternValidator(cfg *config.Config, caller bus.Caller) usecase.PatternValidator {
	if !cfg.PatternsEnabled {
		return accountsvc.PatternsUnavailable{}
	}
	return bus.NewPatternClient(caller)
}

func ownerDirectory(cfg *config.Config, caller bus.Caller, cache usecase.Cache, log zerolog.Logger) usecase.OwnerDirectory {
	if !cfg.OwnersEnabled {
		return accountsvc.AnyOwner{}
	}
	return accountsvc.NewCachedOwnerDirectory(bus.NewOwnerClient(caller), cache, cfg.OwnerCacheTTL, log)
}

func settlementLocker(cfg *config.Config, client goredis.UniversalClient, log zerolog.Logger) usecase.Locker {
	if cfg.Locks == config.LocksLocal {
		log.Warn().Msg("settlement locks are process-local; run a single replica")
		return locker.NewLocal()
	}
	return redisRepo.NewLocker(client, redisRepo.DefaultLockerOptions(), log)
}

// eventPublisher publishes outbox events to the events exchange, or only logs
// them when no exchange is configured.
func eventPublisher(cfg *config.Config, conn *amqp.Connection, log zerolog.Logger) (usecase.EventPublisher, error) {
	if cfg.EventsExchange == "" {
		return eventpublisher.NewLogPublisher(log), nil
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publisher channel: %w", err)
	}
	publisher, err := bus.NewPublisher(ch, cfg.EventsExchange)
	if err != nil {
		return nil, fmt.Errorf("failed to declare events exchange: %w", err)
	}
	return publisher, nil
}

func attemptLimiterConfig(cfg *config.Config) ratelimit.Config {
	return ratelimit.Config{
		Attempts:    cfg.AuthAttemptsPerMinute,
		Window:      time.Minute,
		Cooldown:    cfg.AuthAttemptsCooldown,
		MinInterval: cfg.AuthAttemptsMinInterval,
	}
}

func amqpCheck(conn *amqp.Connection) handler.Checker {
	return func(context.Context) error {
		if conn.IsClosed() {
			return amqp.ErrClosed
		}
		return nil
	}
}
