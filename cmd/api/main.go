package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/kseslo/deadliner/internal/config/api"
	"github.com/kseslo/deadliner/internal/obs"
	pg "github.com/kseslo/deadliner/internal/repository/postgres"
	redisrepo "github.com/kseslo/deadliner/internal/repository/redis"
	"github.com/kseslo/deadliner/internal/services/api"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.Log.AsLoggerConfig(cfg.App))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting api", zap.String("env", cfg.App.Env), zap.String("ver", cfg.App.Version))

	otelCloser, err := obs.SetupOTel(rootCtx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	db, err := pg.New(rootCtx, cfg.DB)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	var invalidator api.PrefInvalidator
	if cache, err := redisrepo.NewPreferenceCache(rootCtx, cfg.Redis); err != nil {
		logger.Warn("redis unavailable, preference writes will not invalidate cache", zap.Error(err))
	} else {
		invalidator = cache
		defer func() { _ = cache.Close() }()
	}

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, logger)

	uc := api.NewUsecase(pg.NewDeadlineRepo(db), pg.NewPreferenceRepo(db), pg.NewNotificationRepo(db), invalidator)
	srv := api.NewServer(&cfg.Server, api.NewHandlers(uc, logger), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	var runErr error
	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal")
	case runErr = <-errCh:
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("http serve", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	_ = ms.Shutdown(shCtx)
	logger.Info("bye")
}
