package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"autovision/backend/internal/cache"
	"autovision/backend/internal/config"
	"autovision/backend/internal/database"
	"autovision/backend/internal/detect"
	"autovision/backend/internal/log"
	"autovision/backend/internal/media"
	"autovision/backend/internal/queue"
	"autovision/backend/internal/repository"
	"autovision/backend/internal/service"
	"autovision/backend/internal/storage"
	"autovision/backend/internal/tasks"
	"autovision/backend/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redisClient.Close()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	extractor, err := media.NewFrameExtractor(cfg.Worker.TempDir, cfg.Detection.FrameSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init frame extractor")
	}
	defer extractor.Cleanup()

	videoRepo := repository.NewVideoRepository(dbPool)
	eventRepo := repository.NewEventRepository(dbPool)
	settingsRepo := repository.NewSettingsRepository(dbPool)

	controller := detect.NewThresholdController(cfg.Detection.InitialThreshold, cfg.Detection.LearningRate)
	cleanup := service.NewCleanupService(videoRepo, eventRepo, settingsRepo, objectStore, logger)

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.New(cfg.Metrics.Namespace)
	}

	processor := tasks.NewProcessor(
		cfg,
		videoRepo,
		eventRepo,
		settingsRepo,
		objectStore,
		extractor,
		controller,
		cleanup,
		redisClient,
		metrics,
		logger,
	)

	consumer := queue.NewConsumer(
		redisClient,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)
	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ensure consumer group failed")
	}

	heartbeat := tasks.NewHeartbeat(redisClient, cfg.Detection.HeartbeatInterval, cfg.Detection.HeartbeatTTL, logger)
	go heartbeat.Run(ctx)

	go func() {
		if err := consumer.Start(ctx); err != nil && err != context.Canceled {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	logger.Info().
		Str("stream", cfg.Redis.Stream).
		Str("group", cfg.Redis.Group).
		Str("consumer", cfg.Redis.Consumer).
		Msg("worker started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
