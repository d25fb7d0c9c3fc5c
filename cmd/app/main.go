// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchday-reports/internal/config"
	pg "matchday-reports/internal/infra/db/postgres"
	"matchday-reports/internal/infra/logging"
	"matchday-reports/internal/infra/metrics"
	red "matchday-reports/internal/infra/redis"
	"matchday-reports/internal/infra/storage"
	"matchday-reports/internal/infra/web"
	"matchday-reports/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (X-Author-Id auth fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	queue := red.NewJobQueue(redisClient, cfg.Queue.Name, cfg.Queue.PollTimeout)

	// ---- Object storage ----
	store, err := storage.NewGCSStorage(ctx, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal().Err(err).Msg("storage")
	}
	defer store.Close()

	// ---- Repositories and use cases ----
	reportRepo := pg.NewReportRepo(pool)
	assetRepo := pg.NewAssetRepo(pool)
	jobRepo := pg.NewJobRepo(pool)
	tm := pg.NewTxManager(pool)

	reportUC := usecase.NewReportUseCase(reportRepo, assetRepo, jobRepo, queue, tm, logger)
	assetUC := usecase.NewAssetUseCase(reportRepo, assetRepo, store, tm, cfg.Storage.SignedTTL, logger)

	// ---- HTTP ----
	if cfg.Auth.JWTSecret == "" && !cfg.Runtime.Dev {
		logger.Fatal().Msg("auth.jwt_secret is required outside dev mode")
	}
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Runtime.Dev)
	server := web.NewServer(reportUC, assetUC, auth, logger)
	go func() {
		if err := server.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
