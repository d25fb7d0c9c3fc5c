// File: cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"matchday-reports/internal/config"
	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/adapter"
	"matchday-reports/internal/infra/adapters/ai"
	"matchday-reports/internal/infra/adapters/replicate"
	pg "matchday-reports/internal/infra/db/postgres"
	"matchday-reports/internal/infra/logging"
	"matchday-reports/internal/infra/metrics"
	red "matchday-reports/internal/infra/redis"
	"matchday-reports/internal/infra/storage"
	"matchday-reports/internal/infra/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop extractor fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	metrics.MustRegister()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	queue := red.NewJobQueue(redisClient, cfg.Queue.Name, cfg.Queue.PollTimeout)

	store, err := storage.NewGCSStorage(ctx, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal().Err(err).Msg("storage")
	}
	defer store.Close()

	reportRepo := pg.NewReportRepo(pool)
	assetRepo := pg.NewAssetRepo(pool)
	jobRepo := pg.NewJobRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Moment extractor (Gemini -> OpenAI-compatible -> noop in dev) ----
	var extractor adapter.MomentExtractor
	switch {
	case cfg.Extract.GeminiKey != "":
		extractor, err = ai.NewGeminiExtractor(ctx, cfg.Extract.GeminiKey, cfg.Extract.Model)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini extractor")
		}
		logger.Info().Str("model", cfg.Extract.Model).Msg("extractor: gemini")
	case cfg.Extract.OpenAIKey != "":
		extractor, err = ai.NewOpenAIExtractor(cfg.Extract.OpenAIKey, cfg.Extract.OpenAIBaseURL, cfg.Extract.OpenAIModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai extractor")
		}
		logger.Info().Str("model", cfg.Extract.OpenAIModel).Msg("extractor: openai-compatible")
	case cfg.Runtime.Dev:
		extractor = ai.NewNoopExtractor()
		logger.Warn().Msg("extractor: noop (dev mode)")
	default:
		logger.Fatal().Msg("no extractor configured: set extract.gemini_key or extract.openai_key")
	}

	predictions, err := replicate.NewClient(cfg.Replicate.APIToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("prediction client")
	}

	handlers := map[model.JobType]worker.Handler{
		model.JobTypeExtractMoments: worker.NewExtractMomentsHandler(
			extractor, jobRepo, reportRepo, queue,
			cfg.Extract.MaxAttempts, cfg.Extract.RequestTimeout, logger),
		model.JobTypeGimpifyImage: worker.NewGimpifyImageHandler(
			predictions, assetRepo, jobRepo, store,
			cfg.Replicate.GimpModel, cfg.Replicate.GimpTimeout, cfg.Replicate.GimpPoll,
			cfg.Storage.SignedTTL, logger),
		model.JobTypeGenerateVideo: worker.NewGenerateVideoHandler(
			predictions, assetRepo, jobRepo, store,
			cfg.Replicate.VideoModel, cfg.Replicate.VideoTimeout, cfg.Replicate.VideoPoll, logger),
	}

	runner := worker.NewRunner(queue, jobRepo, reportRepo, tm, handlers, logger)
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker loop ended")
	}
	logger.Info().Msg("worker stopped")
}
