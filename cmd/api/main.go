package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jobportal/internal/cache"
	"jobportal/internal/config"
	"jobportal/internal/database"
	"jobportal/internal/handlers"
	"jobportal/internal/jobs"
	"jobportal/internal/log"
	"jobportal/internal/middleware"
	"jobportal/internal/queue"
	"jobportal/internal/repository"
	"jobportal/internal/security"
	"jobportal/internal/server"
	"jobportal/internal/service"
	"jobportal/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, "jobportal-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis, "jobportal-api")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
	} else {
		logger.Warn().Msg("redis not configured; rate limits are per process and background tasks are disabled")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	accounts := repository.NewAccountRepository(dbPool)
	jobRepo := repository.NewJobRepository(dbPool)
	applications := repository.NewApplicationRepository(dbPool)

	var (
		publisher *queue.Publisher
		limiter   middleware.Limiter = middleware.NewLocalLimiter()
	)
	checks := []handlers.HealthCheck{
		{Name: "database", Ping: dbPool.Ping},
		{Name: "storage", Ping: objectStore.Ping},
	}
	if redisClient != nil {
		publisher = queue.NewPublisher(redisClient, cfg.Queue.Stream)
		limiter = middleware.NewRedisLimiter(redisClient)
		checks = append(checks, handlers.HealthCheck{Name: "cache", Ping: cache.Ping(redisClient)})
	}

	authService := service.NewAuthService(
		accounts,
		security.NewPasswordHasher(cfg.Security.BcryptCost),
		security.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.JWTTTL),
		logger,
	)
	jobService := service.NewJobService(jobRepo, applications, cfg.Listing.PageSize, logger)
	applicationService := service.NewApplicationService(
		jobRepo,
		applications,
		objectStore,
		publisher,
		cfg.Storage.ResumePrefix,
		cfg.Upload.MaxResumeBytes,
		logger,
	)

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Dependencies{
		Auth:         authService,
		Jobs:         jobService,
		Applications: applicationService,
		Limiter:      limiter,
		HealthChecks: checks,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	var scheduler *jobs.Scheduler
	if publisher != nil {
		scheduler = jobs.NewScheduler(publisher, cfg.Scheduler.SweepSchedule, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error().Err(err).Msg("scheduler start failed")
		}
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
