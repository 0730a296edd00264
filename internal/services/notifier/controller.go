package notifier

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/kseslo/deadliner/internal/domain/events"
	kafkax "github.com/kseslo/deadliner/internal/repository/kafka"
)

type Controller struct {
	Log *zap.Logger
	Sub *kafkax.Consumer
	UC  *Handler

	mConsumed prometheus.Counter
	mSent     prometheus.Counter
	mDeferred prometheus.Counter
	mSkipped  prometheus.Counter
	mErrors   prometheus.Counter
}

func NewController(log *zap.Logger, sub *kafkax.Consumer, uc *Handler) *Controller {
	return &Controller{
		Log: log,
		Sub: sub,
		UC:  uc,
		mConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_events_consumed_total", Help: "ReminderDue events consumed",
		}),
		mSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_emails_sent_total", Help: "Reminder emails sent",
		}),
		mDeferred: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_reminders_deferred_total", Help: "Reminders deferred by quiet hours",
		}),
		mSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_events_skipped_total", Help: "Stale or undeliverable events dropped",
		}),
		mErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_errors_total", Help: "Errors",
		}),
	}
}

func (c *Controller) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(
		func(ctx context.Context, _ []byte, ev *events.ReminderDue) error {
			c.mConsumed.Inc()
			if ev.DeadlineID <= 0 {
				c.Log.Warn("invalid ReminderDue: bad deadline_id", zap.Int64("deadline_id", ev.DeadlineID))
				return nil
			}
			outcome, err := c.UC.HandleReminderDue(ctx, *ev)
			if err != nil {
				c.mErrors.Inc()
				return err
			}
			switch outcome {
			case OutcomeSent:
				c.mSent.Inc()
			case OutcomeDeferred:
				c.mDeferred.Inc()
			case OutcomeSkipped:
				c.mSkipped.Inc()
			}
			return nil
		},
	)
	return c.Sub.Consume(ctx, handler)
}
