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

	config "github.com/kseslo/deadliner/internal/config/notifier"
	"github.com/kseslo/deadliner/internal/domain/notification"
	"github.com/kseslo/deadliner/internal/obs"
	"github.com/kseslo/deadliner/internal/repository/kafka"
	pg "github.com/kseslo/deadliner/internal/repository/postgres"
	redisrepo "github.com/kseslo/deadliner/internal/repository/redis"
	"github.com/kseslo/deadliner/internal/services/notifier"
	"github.com/kseslo/deadliner/internal/services/notifier/repo"
)

func wiring(db *pg.DB, cache repo.PrefCache, cfg *config.Config, cons *kafka.Consumer, l *zap.Logger) *notifier.Controller {
	deadlines := pg.NewDeadlineRepo(db)
	prefs := pg.NewPreferenceRepo(db)
	notifs := pg.NewNotificationRepo(db)
	mailer := notifier.NewMailer(cfg.SMTP).WithLogger(l)

	uc := &notifier.Handler{
		Deadlines: repo.Deadlines{R: deadlines},
		Prefs:     repo.Preferences{Cache: cache, R: prefs},
		Store:     repo.Notifications{R: notifs},
		Out:       mailer,
		Clock:     notification.SystemClock{},
		Log:       l,
	}

	return notifier.NewController(l, cons, uc)
}

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(&obs.LogConfig{Level: cfg.LogLevel, App: "deadliner/notifier"})
	if err != nil {
		log.Fatal(err)
	}

	l.Info("starting notifier",
		zap.Any("kafka_in", cfg.In),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
		zap.String("smtp_addr", cfg.SMTP.Addr),
	)

	otelCloser, err := obs.SetupOTel(rootCtx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Warn("otel init", zap.Error(err))
	}
	defer func() {
		if otelCloser != nil {
			_ = otelCloser.Shutdown(context.Background())
		}
	}()

	db, err := pg.New(rootCtx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	l.Info("db connected")

	// the cache is an accelerator; the notifier works off postgres without it
	var prefCache repo.PrefCache
	if cache, err := redisrepo.NewPreferenceCache(rootCtx, cfg.Redis); err != nil {
		l.Warn("redis unavailable, running without preference cache", zap.Error(err))
	} else {
		prefCache = cache
		defer func() { _ = cache.Close() }()
	}

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	cons := kafka.BootstrapConsumer(rootCtx, cfg.In.AsConsumerConfig(), l).WithLogger(l)
	defer func() { _ = cons.Close() }()
	l.Info("kafka consumer initialized",
		zap.Strings("brokers", cfg.In.Brokers),
		zap.String("group_id", cfg.In.GroupID),
		zap.String("topic", cfg.In.Topic),
	)

	ctrl := wiring(db, prefCache, cfg, cons, l)
	errCh := make(chan error, 1)
	go func() {
		l.Info("controller starting")
		errCh <- ctrl.Run(rootCtx)
	}()

	var runErr error
	select {
	case <-rootCtx.Done():
		l.Info("shutdown signal")
	case runErr = <-errCh:
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			l.Error("controller error", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
