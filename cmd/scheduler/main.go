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

	config "github.com/kseslo/deadliner/internal/config/scheduler"
	"github.com/kseslo/deadliner/internal/obs"
	"github.com/kseslo/deadliner/internal/obs/retry"
	outboxrunner "github.com/kseslo/deadliner/internal/outbox"
	kafkaRepo "github.com/kseslo/deadliner/internal/repository/kafka"
	pg "github.com/kseslo/deadliner/internal/repository/postgres"
	"github.com/kseslo/deadliner/internal/services/scheduler"
	"github.com/kseslo/deadliner/internal/services/scheduler/repo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(&obs.LogConfig{Level: cfg.LogLevel, App: "deadliner/scheduler"})
	if err != nil {
		log.Fatal(err)
	}
	l.Info("starting scheduler",
		zap.Any("kafka_out", cfg.Kafka),
		zap.String("metrics_addr", cfg.Sched.MetricsAddr),
	)

	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	db, err := pg.New(ctx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	producer := kafkaRepo.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
	defer func() { _ = producer.Close() }()
	publisher := kafkaRepo.NewReminderEventsKafka(producer)

	ms := obs.BootstrapMetricsServer(cfg.Sched.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	deadlineRepo := pg.NewDeadlineRepo(db)
	outboxRepo := pg.NewOutboxRepo(db)
	tx := pg.NewTransactor(db, l)

	uc := scheduler.NewUC(
		tx,
		repo.Deadlines{R: deadlineRepo},
		repo.Outbox{R: outboxRepo},
	)
	runner := scheduler.New(l, uc, &cfg.Sched)

	dispatch := outboxrunner.MakeGlobalHandler(publisher, retry.DefaultKafkaPolicy(l))
	obr := outboxrunner.NewRunner(l, outboxRepo, dispatch,
		cfg.Outbox.Workers, cfg.Outbox.BatchSize, cfg.Outbox.WaitTime, cfg.Outbox.InProgressTTL)
	go obr.Start(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()

	l.Info("scheduler started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
