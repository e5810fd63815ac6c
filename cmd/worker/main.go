package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"jobportal/internal/cache"
	"jobportal/internal/config"
	"jobportal/internal/database"
	"jobportal/internal/log"
	"jobportal/internal/queue"
	"jobportal/internal/repository"
	"jobportal/internal/storage"
	"jobportal/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level).With().Str("app", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Redis.Addr == "" {
		logger.Fatal().Msg("the worker requires redis.addr")
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis, "jobportal-worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, "jobportal-worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	processor := tasks.NewProcessor(
		objectStore,
		repository.NewApplicationRepository(dbPool),
		cfg.Storage.ResumePrefix,
		cfg.Scheduler.OrphanGrace,
		logger,
	)
	consumer := queue.NewConsumer(client, cfg.Queue, logger, processor)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("consumer stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("consumer did not stop in time")
	}
}
