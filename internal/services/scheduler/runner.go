package scheduler

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	config "github.com/kseslo/deadliner/internal/config/scheduler"
)

type tickMetrics struct {
	fetched  prometheus.Counter
	enqueued prometheus.Counter
	errs     prometheus.Counter
	loopDur  prometheus.Histogram
}

func newTickMetrics() tickMetrics {
	return tickMetrics{
		fetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_reminders_fetched_total", Help: "Due reminders claimed from DB",
		}),
		enqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_reminders_enqueued_total", Help: "ReminderDue rows enqueued to outbox",
		}),
		errs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_errors_total", Help: "Errors in scheduler loop",
		}),
		loopDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "scheduler_loop_duration_seconds", Help: "Scheduler tick duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Runner polls for due reminders on a fixed tick and hands each batch to the
// usecase. Claiming is transactional, so several replicas can run the same
// loop without double-enqueueing.
type Runner struct {
	log *zap.Logger
	uc  *Usecase
	cfg *config.SchedCfg
	m   tickMetrics
}

func New(log *zap.Logger, uc *Usecase, cfg *config.SchedCfg) *Runner {
	return &Runner{log: log, uc: uc, cfg: cfg, m: newTickMetrics()}
}

// Run ticks immediately once, then on every interval until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Tick)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	defer func() { r.m.loopDur.Observe(time.Since(start).Seconds()) }()

	fetched, enqueued, err := r.uc.Tick(ctx, r.cfg.BatchLimit)
	if err != nil {
		r.m.errs.Inc()
		r.log.Warn("tick error", zap.Error(err))
	}
	if fetched == 0 {
		return
	}
	r.m.fetched.Add(float64(fetched))
	r.m.enqueued.Add(float64(enqueued))
	r.log.Debug("scheduled batch", zap.Int("fetched", fetched), zap.Int("enqueued", enqueued))
}
