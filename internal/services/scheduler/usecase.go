package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kseslo/deadliner/internal/domain/events"
	"github.com/kseslo/deadliner/internal/domain/outbox"
	"github.com/kseslo/deadliner/internal/services/scheduler/repo"
)

type Usecase struct {
	Tx        repo.Tx
	Deadlines repo.Deadlines
	Outbox    repo.Outbox
	Clock     func() time.Time
}

func NewUC(tx repo.Tx, deadlines repo.Deadlines, ob repo.Outbox) *Usecase {
	return &Usecase{
		Tx:        tx,
		Deadlines: deadlines,
		Outbox:    ob,
		Clock:     func() time.Time { return time.Now().UTC() },
	}
}

// Tick claims due reminders and enqueues a ReminderDue outbox row for each,
// all in one transaction. The outbox idempotency key is derived from the
// deadline id and its reminder instant, so redelivery after a crash cannot
// double-enqueue.
func (u *Usecase) Tick(ctx context.Context, limit int) (fetched, enqueued int, err error) {
	if limit <= 0 {
		limit = 100
	}

	tr := otel.Tracer("scheduler.uc")
	ctxTick, span := tr.Start(ctx, "scheduler.tick",
		trace.WithAttributes(attribute.Int("batch.limit", limit)),
	)
	defer span.End()

	now := u.Clock()

	err = u.Tx.WithTx(ctxTick, func(txCtx context.Context) error {
		due, ferr := u.Deadlines.FetchDue(txCtx, limit)
		if ferr != nil {
			return fmt.Errorf("fetch due: %w", ferr)
		}
		fetched = len(due)

		for _, d := range due {
			ev := events.ReminderDue{
				DeadlineID: d.ID,
				UserID:     d.UserID,
				DueAt:      d.DueAt,
				At:         now,
			}
			data, merr := json.Marshal(ev)
			if merr != nil {
				return fmt.Errorf("marshal reminder event: %w", merr)
			}
			key := fmt.Sprintf("reminder-%d-%d", d.ID, d.RemindAt.Unix())
			if qerr := u.Outbox.Enqueue(txCtx, key, outbox.KindReminderDue, data); qerr != nil {
				return fmt.Errorf("enqueue reminder %d: %w", d.ID, qerr)
			}
			enqueued++
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, 0, err
	}

	span.SetAttributes(
		attribute.Int("batch.fetched", fetched),
		attribute.Int("batch.enqueued", enqueued),
	)
	return fetched, enqueued, nil
}
