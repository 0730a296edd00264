package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kseslo/deadliner/internal/domain/outbox"
	"github.com/kseslo/deadliner/internal/obs"
)

type runnerMetrics struct {
	picked    prometheus.Counter
	ok        prometheus.Counter
	errs      prometheus.Counter
	tickDur   prometheus.Histogram
	batchSize prometheus.Gauge
}

func newRunnerMetrics() runnerMetrics {
	return runnerMetrics{
		picked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "outbox_picked_total", Help: "Messages picked into processing.",
		}),
		ok: promauto.NewCounter(prometheus.CounterOpts{
			Name: "outbox_processed_ok_total", Help: "Messages processed successfully.",
		}),
		errs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "outbox_processed_err_total", Help: "Handler errors.",
		}),
		tickDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "outbox_tick_duration_seconds", Help: "Tick duration.",
			Buckets: prometheus.DefBuckets,
		}),
		batchSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_last_batch_size", Help: "Size of last picked batch.",
		}),
	}
}

// Runner drains the outbox table: each worker wakes on its own ticker, claims
// a batch of pending messages, dispatches them by kind and marks the
// delivered ones. Failed messages stay claimed until the in-progress TTL
// expires and a later tick re-picks them.
type Runner struct {
	log      *zap.Logger
	repo     outbox.Repository
	dispatch outbox.GlobalHandler

	workers       int
	batchSize     int
	waitTime      time.Duration
	inProgressTTL time.Duration

	m runnerMetrics
}

func NewRunner(
	log *zap.Logger,
	repo outbox.Repository,
	dispatch outbox.GlobalHandler,
	workers int,
	batchSize int,
	waitTime time.Duration,
	inProgressTTL time.Duration,
) *Runner {
	return &Runner{
		log:           log,
		repo:          repo,
		dispatch:      dispatch,
		workers:       workers,
		batchSize:     batchSize,
		waitTime:      waitTime,
		inProgressTTL: inProgressTTL,
		m:             newRunnerMetrics(),
	}
}

// Start launches the worker goroutines and returns; workers exit when ctx is
// canceled.
func (r *Runner) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx)
		}()
	}
}

func (r *Runner) worker(ctx context.Context) {
	r.log.Info("outbox worker started", zap.Duration("wait", r.waitTime))

	ticker := time.NewTicker(r.waitTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox worker stop")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	t0 := time.Now()
	defer func() { r.m.tickDur.Observe(time.Since(t0).Seconds()) }()

	ctx, span := otel.Tracer("outbox.runner").Start(ctx, "outbox.tick")
	defer span.End()
	span.SetAttributes(
		attribute.Int("batch.limit", r.batchSize),
		attribute.String("in_progress_ttl", r.inProgressTTL.String()),
	)

	messages, err := r.repo.PickBatch(ctx, r.batchSize, r.inProgressTTL)
	if err != nil {
		span.RecordError(err)
		r.m.errs.Inc()
		obs.WithTrace(ctx, r.log).Error("outbox pick error", zap.Error(err))
		return
	}
	r.m.picked.Add(float64(len(messages)))
	r.m.batchSize.Set(float64(len(messages)))

	okKeys := make([]string, 0, len(messages))
	for i := range messages {
		if r.process(&messages[i]) {
			okKeys = append(okKeys, messages[i].IdempotencyKey)
			r.m.ok.Inc()
		}
	}

	if err := r.repo.MarkSuccess(ctx, okKeys); err != nil {
		span.RecordError(err)
		r.m.errs.Inc()
		obs.WithTrace(ctx, r.log).Error("mark success error", zap.Error(err))
	}
}

// process dispatches a single message under its own span, restoring the
// trace context that was captured when the message was enqueued.
func (r *Runner) process(m *outbox.Message) bool {
	parent := otel.GetTextMapPropagator().Extract(context.Background(), propagation.MapCarrier{
		"traceparent": m.Traceparent,
		"tracestate":  m.Tracestate,
		"baggage":     m.Baggage,
	})

	ctx, span := otel.Tracer("outbox.runner").Start(parent, "outbox.dispatch",
		trace.WithAttributes(
			attribute.String("outbox.key", m.IdempotencyKey),
			attribute.Int("outbox.kind", int(m.Kind)),
		),
	)
	defer span.End()

	handler, err := r.dispatch(m.Kind)
	if err != nil {
		span.RecordError(err)
		r.m.errs.Inc()
		obs.WithTrace(ctx, r.log).Error("no handler for kind",
			zap.Int("kind", int(m.Kind)), zap.Error(err))
		return false
	}

	if err := handler(ctx, m.Data); err != nil {
		span.RecordError(err)
		r.m.errs.Inc()
		obs.WithTrace(ctx, r.log).Error("handler error",
			zap.Int("kind", int(m.Kind)), zap.Error(err))
		return false
	}
	return true
}
