package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/fincore/internal/adapter/http"
	"github.com/iho/fincore/internal/adapter/http/handler"
	"github.com/iho/fincore/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/fincore/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fincore/internal/adapter/repository/redis"
	"github.com/iho/fincore/internal/infrastructure/config"
	"github.com/iho/fincore/internal/infrastructure/logger"
	"github.com/iho/fincore/internal/infrastructure/metrics"
	"github.com/iho/fincore/internal/infrastructure/postgres"
	"github.com/iho/fincore/internal/infrastructure/redis"
	"github.com/iho/fincore/internal/period"
	"github.com/iho/fincore/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	lg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = lg

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = lg.WithContext(ctx)

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal().Err(err).Msg("server failed")
	}
	lg.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, lg zerolog.Logger) error {
	if cfg.MigrationsAuto {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	lg.Info().Msg("connected to postgres")

	// Redis backs the report cache and idempotency keys; without it both are
	// disabled and every view is computed on demand.
	var (
		redisClient      goredis.UniversalClient
		reportCache      usecase.ReportCache
		idempotencyStore usecase.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, redis.ClientConfig{URL: cfg.RedisURL, PingAttempts: 5, PingInterval: time.Second})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		lg.Info().Msg("connected to redis")

		redisClient = client
		reportCache = redisRepo.NewReportCache(client)
		idempotencyStore = redisRepo.NewIdempotencyStore(client)
	}

	recorder := metrics.New(nil)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	movementRepo := postgresRepo.NewMovementRepository(pool)
	entityRepo := postgresRepo.NewEntityRepository(pool)
	ruleRepo := postgresRepo.NewRecurringRuleRepository(pool)
	postingRepo := postgresRepo.NewPostingRepository(pool)
	debtRepo := postgresRepo.NewDebtRepository(pool)
	budgetRepo := postgresRepo.NewBudgetRepository(pool)
	alertRepo := postgresRepo.NewAlertRepository(pool)
	goalRepo := postgresRepo.NewGoalRepository(pool)
	contributionRepo := postgresRepo.NewContributionRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	movementUC := usecase.NewMovementUseCase(txManager, movementRepo, entityRepo, idGen, reportCache)
	entityUC := usecase.NewEntityUseCase(entityRepo, movementRepo, idGen)
	recurringUC := usecase.NewRecurringUseCase(txManager, ruleRepo, postingRepo, movementRepo, idGen, postgresRepo.NewRetrier(), reportCache, recorder)
	debtUC := usecase.NewDebtUseCase(txManager, debtRepo, movementRepo, idGen, reportCache, recorder)
	budgetUC := usecase.NewBudgetUseCase(budgetRepo, alertRepo, movementRepo, idGen, recorder)
	goalUC := usecase.NewGoalUseCase(txManager, goalRepo, contributionRepo, movementRepo, idGen, reportCache)
	reportUC := usecase.NewReportUseCase(movementRepo, entityRepo, ruleRepo, postingRepo, debtRepo, contributionRepo, reportCache, cfg.CacheTTL, recorder)

	routerCfg := httpAdapter.RouterConfig{
		Logger:           lg,
		MovementHandler:  handler.NewMovementHandler(movementUC),
		EntityHandler:    handler.NewEntityHandler(entityUC),
		RecurringHandler: handler.NewRecurringHandler(recurringUC),
		DebtHandler:      handler.NewDebtHandler(debtUC),
		BudgetHandler:    handler.NewBudgetHandler(budgetUC),
		GoalHandler:      handler.NewGoalHandler(goalUC),
		ReportHandler:    handler.NewReportHandler(reportUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
	}
	if cfg.RateLimitRPS > 0 {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
		go routerCfg.RateLimiter.Run(ctx, time.Minute)
	}

	if cfg.SweepInterval > 0 {
		go runSweeps(ctx, cfg.SweepInterval, recurringUC, debtUC)
	}

	server := newHTTPServer(cfg, httpAdapter.NewRouter(routerCfg))

	errCh := make(chan error, 1)
	go func() {
		lg.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

type dueChecker interface {
	RunDueCheck(ctx context.Context, today time.Time) (*usecase.DueCheckResult, error)
}

type overdueMarker interface {
	MarkOverdue(ctx context.Context, today time.Time) (int, error)
}

// runSweeps posts due recurring rules and flags overdue loan payments once at
// startup and then every interval until ctx is done.
func runSweeps(ctx context.Context, interval time.Duration, recurring dueChecker, debts overdueMarker) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sweepOnce(ctx, time.Now().UTC(), recurring, debts)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func sweepOnce(ctx context.Context, now time.Time, recurring dueChecker, debts overdueMarker) {
	logger := zerolog.Ctx(ctx)
	today := period.Day(now)

	if _, err := recurring.RunDueCheck(ctx, today); err != nil {
		logger.Error().Err(err).Msg("recurring due check failed")
	}
	if _, err := debts.MarkOverdue(ctx, today); err != nil {
		logger.Error().Err(err).Msg("overdue sweep failed")
	}
}
