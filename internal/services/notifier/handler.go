package notifier

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kseslo/deadliner/internal/domain/countdown"
	"github.com/kseslo/deadliner/internal/domain/events"
	"github.com/kseslo/deadliner/internal/domain/notification"
	"github.com/kseslo/deadliner/internal/domain/tz"
	"github.com/kseslo/deadliner/internal/repository/postgres"
	"github.com/kseslo/deadliner/internal/services/notifier/repo"
)

// Outcome tells the controller what happened to a consumed event.
type Outcome int

const (
	OutcomeSent Outcome = iota
	// OutcomeDeferred means quiet hours pushed the reminder to a later
	// instant; the scheduler will re-emit it.
	OutcomeDeferred
	// OutcomeSkipped means the event is stale or undeliverable and is
	// dropped without retry.
	OutcomeSkipped
)

type Handler struct {
	Deadlines repo.Deadlines
	Prefs     repo.Preferences
	Store     repo.Notifications
	Out       notification.Sender
	Clock     notification.Clock
	Log       *zap.Logger
}

const dueLayout = "Mon, 02 Jan 2006 15:04 MST"

func (h *Handler) HandleReminderDue(ctx context.Context, ev events.ReminderDue) (Outcome, error) {
	d, err := h.Deadlines.GetByID(ctx, ev.DeadlineID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			h.Log.Warn("reminder for missing deadline", zap.Int64("deadline_id", ev.DeadlineID))
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, fmt.Errorf("get deadline: %w", err)
	}
	if !d.Active {
		return OutcomeSkipped, nil
	}

	pref, err := h.Prefs.GetByUser(ctx, d.UserID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			h.Log.Warn("no notification preference, dropping reminder",
				zap.Int64("user_id", d.UserID), zap.Int64("deadline_id", d.ID))
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, fmt.Errorf("get preference: %w", err)
	}

	now := h.Clock.Now()

	if pref.Quiet.IsQuietNow(now) {
		next := pref.Quiet.NextAvailable(now)
		if err := h.Deadlines.Reschedule(ctx, d.ID, next); err != nil {
			return OutcomeSkipped, fmt.Errorf("defer reminder: %w", err)
		}
		h.Log.Info("reminder deferred by quiet hours",
			zap.Int64("deadline_id", d.ID),
			zap.Time("next_available", next),
		)
		return OutcomeDeferred, nil
	}

	cd := countdown.Compute(d.DueAt, now)
	dueLocal := tz.Format(d.DueAt, d.Zone, dueLayout)

	var subject string
	if cd.Expired {
		subject = fmt.Sprintf("%s has passed", d.Title)
	} else {
		subject = fmt.Sprintf("%s — %s left", d.Title, cd.Display)
	}
	body := fmt.Sprintf(
		"Hello!\n\nYour %s deadline %q is due %s (%s remaining, urgency: %s).\n\n— Deadliner",
		d.Kind, d.Title, dueLocal, cd.Display, cd.Urgency,
	)

	if err := h.Out.Send(ctx, pref.Email, subject, body); err != nil {
		return OutcomeSkipped, fmt.Errorf("send email: %w", err)
	}

	if err := h.Store.Create(ctx, &notification.Notification{
		DeadlineID: d.ID,
		UserID:     d.UserID,
		Channel:    "email",
		SentAt:     now,
		Payload:    body,
	}); err != nil {
		// The email is already out; losing the audit row is not worth a
		// redelivery that would send it twice.
		h.Log.Warn("record notification", zap.Error(err))
	}

	return OutcomeSent, nil
}
