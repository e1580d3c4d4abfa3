package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/corebank-io/corebank/internal/adapter/http"
	"github.com/corebank-io/corebank/internal/adapter/http/handler"
	postgresRepo "github.com/corebank-io/corebank/internal/adapter/repository/postgres"
	redisRepo "github.com/corebank-io/corebank/internal/adapter/repository/redis"
	"github.com/corebank-io/corebank/internal/adapter/settlement"
	"github.com/corebank-io/corebank/internal/infrastructure/auth"
	"github.com/corebank-io/corebank/internal/infrastructure/config"
	"github.com/corebank-io/corebank/internal/infrastructure/logger"
	"github.com/corebank-io/corebank/internal/infrastructure/metrics"
	"github.com/corebank-io/corebank/internal/infrastructure/postgres"
	"github.com/corebank-io/corebank/internal/infrastructure/redis"
	"github.com/corebank-io/corebank/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Run migrations before opening the pool
	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns, cfg.DatabaseTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics
	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Repositories and infrastructure adapters
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(appLogger)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	customerRepo := postgresRepo.NewCustomerRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	logRepo := postgresRepo.NewTransactionLogRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Settlement gateway. An empty base URL selects the in-process mock.
	var gateway usecase.SettlementGateway
	if cfg.SettlementBaseURL != "" {
		gateway = settlement.NewHTTPGateway(cfg.SettlementBaseURL, cfg.SettlementTimeout, appLogger, appMetrics)
		log.Info().Str("base_url", cfg.SettlementBaseURL).Msg("using HTTP settlement gateway")
	} else {
		gateway = settlement.NewMockGateway()
		log.Warn().Msg("using in-process mock settlement gateway")
	}

	// Authentication. Without a secret the API trusts the X-Customer-ID
	// header, which is only acceptable for local development.
	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		log.Warn().Msg("authentication disabled")
	}

	// Use cases
	registry := usecase.NewSystemAccountRegistry(accountRepo, customerRepo, idGen, appLogger)
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, cache, appLogger)
	movementUC := usecase.NewMovementUseCase(txManager, retrier, accountRepo, transferRepo, journalRepo, logRepo, auditRepo, registry, gateway, idGen, cache, appMetrics, appLogger)
	compensationUC := usecase.NewCompensationUseCase(txManager, retrier, accountRepo, transferRepo, journalRepo, logRepo, auditRepo, registry, idGen, cache, appMetrics, appLogger)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, journalRepo, auditRepo, idGen, appMetrics, appLogger)
	journalUC := usecase.NewJournalUseCase(txManager, journalRepo, idGen)
	statementUC := usecase.NewStatementUseCase(accountRepo, logRepo)
	batchUC := usecase.NewBatchUseCase(accountRepo, transferRepo, logRepo, auditRepo, movementUC, reconciliationUC, idGen, appMetrics, appLogger)

	// Handlers
	customerHandler := handler.NewCustomerHandler(customerRepo, idGen, jwtManager)
	accountHandler := handler.NewAccountHandler(accountUC)
	movementHandler := handler.NewMovementHandler(movementUC)
	transferHandler := handler.NewTransferHandler(compensationUC, batchUC)
	statementHandler := handler.NewStatementHandler(statementUC)
	journalHandler := handler.NewJournalHandler(journalUC)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationUC, batchUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		CustomerHandler:       customerHandler,
		AccountHandler:        accountHandler,
		MovementHandler:       movementHandler,
		TransferHandler:       transferHandler,
		StatementHandler:      statementHandler,
		JournalHandler:        journalHandler,
		ReconciliationHandler: reconciliationHandler,
		HealthHandler:         healthHandler,
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		JWTManager:            jwtManager,
		Metrics:               appMetrics,
		Logger:                appLogger,
		RateLimit:             cfg.RateLimitRPS,
		RateBurst:             cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
