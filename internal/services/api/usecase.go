package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kseslo/deadliner/internal/domain/countdown"
	"github.com/kseslo/deadliner/internal/domain/deadline"
	"github.com/kseslo/deadliner/internal/domain/notification"
	"github.com/kseslo/deadliner/internal/domain/preference"
	"github.com/kseslo/deadliner/internal/domain/quiet"
	"github.com/kseslo/deadliner/internal/domain/tz"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

// FieldError carries a per-field validation failure; the transport layer
// serializes these so clients see what exactly was rejected.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Msg }

func fieldErr(field, msg string) error {
	return fmt.Errorf("%w: %w", ErrValidation, FieldError{Field: field, Msg: msg})
}

// defaultReminderLead is how far before the due instant the reminder fires
// when the caller does not say.
const defaultReminderLead = 24 * time.Hour

type PrefInvalidator interface {
	Invalidate(ctx context.Context, userID int64) error
}

type Usecase struct {
	Deadlines deadline.Repo
	Prefs     preference.Repo
	Notifs    notification.Repo
	Cache     PrefInvalidator
	Clock     func() time.Time
}

func NewUsecase(deadlines deadline.Repo, prefs preference.Repo, notifs notification.Repo, cache PrefInvalidator) *Usecase {
	return &Usecase{
		Deadlines: deadlines,
		Prefs:     prefs,
		Notifs:    notifs,
		Cache:     cache,
		Clock:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateDeadlineInput is the parsed-or-failed boundary for deadline writes:
// raw strings in, validated domain values out, field-level errors on the way.
type CreateDeadlineInput struct {
	UserID   int64  `json:"user_id"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	DueAt    string `json:"due_at"`
	Zone     string `json:"timezone"`
	RemindAt string `json:"remind_at"`
}

func (in CreateDeadlineInput) parse(now time.Time) (*deadline.Deadline, error) {
	if in.Title == "" {
		return nil, fieldErr("title", "must not be empty")
	}
	if in.UserID <= 0 {
		return nil, fieldErr("user_id", "must be positive")
	}
	dueAt, err := countdown.Parse(in.DueAt)
	if err != nil {
		return nil, fieldErr("due_at", err.Error())
	}
	if in.Zone != "" {
		if _, ok := tz.Resolve(in.Zone); !ok {
			return nil, fieldErr("timezone", "unknown timezone")
		}
	}
	remindAt := dueAt.Add(-defaultReminderLead)
	if in.RemindAt != "" {
		remindAt, err = countdown.Parse(in.RemindAt)
		if err != nil {
			return nil, fieldErr("remind_at", err.Error())
		}
		if remindAt.After(dueAt) {
			return nil, fieldErr("remind_at", "must not be after due_at")
		}
	}
	if remindAt.Before(now) {
		remindAt = now
	}
	kind := in.Kind
	if kind == "" {
		kind = "application"
	}
	return &deadline.Deadline{
		UserID:   in.UserID,
		Title:    in.Title,
		Kind:     kind,
		DueAt:    dueAt,
		Zone:     in.Zone,
		RemindAt: remindAt,
		Active:   true,
	}, nil
}

func (u *Usecase) CreateDeadline(ctx context.Context, in CreateDeadlineInput) (*deadline.Deadline, error) {
	d, err := in.parse(u.Clock())
	if err != nil {
		return nil, err
	}
	if err := u.Deadlines.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (u *Usecase) GetDeadline(ctx context.Context, id int64) (*deadline.Deadline, error) {
	return u.Deadlines.GetByID(ctx, id)
}

func (u *Usecase) ListDeadlines(ctx context.Context, userID int64) ([]*deadline.Deadline, error) {
	if userID <= 0 {
		return nil, fieldErr("user_id", "must be positive")
	}
	return u.Deadlines.ListByUser(ctx, userID)
}

func (u *Usecase) UpdateDeadline(ctx context.Context, id int64, in CreateDeadlineInput, active bool) (*deadline.Deadline, error) {
	cur, err := u.Deadlines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.UserID = cur.UserID
	upd, err := in.parse(u.Clock())
	if err != nil {
		return nil, err
	}
	upd.ID = id
	upd.Active = active
	if err := u.Deadlines.Update(ctx, upd); err != nil {
		return nil, err
	}
	return upd, nil
}

func (u *Usecase) DeleteDeadline(ctx context.Context, id int64) error {
	return u.Deadlines.Delete(ctx, id)
}

// Countdown is the live projection rendered by dashboard widgets; it is
// computed per request and never stored.
func (u *Usecase) Countdown(ctx context.Context, id int64) (*countdown.Result, *deadline.Deadline, error) {
	d, err := u.Deadlines.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	r := countdown.Compute(d.DueAt, u.Clock())
	return &r, d, nil
}

type PreferenceInput struct {
	Email string       `json:"email"`
	Quiet quiet.Window `json:"quiet_hours"`
}

func (u *Usecase) PutPreference(ctx context.Context, userID int64, in PreferenceInput) (*preference.Preference, error) {
	if userID <= 0 {
		return nil, fieldErr("user_id", "must be positive")
	}
	if in.Email == "" {
		return nil, fieldErr("email", "must not be empty")
	}
	if in.Quiet.Enabled {
		if _, err := quiet.ParseMinutes(in.Quiet.Start); err != nil {
			return nil, fieldErr("quiet_hours.start", "must be HH:MM")
		}
		if _, err := quiet.ParseMinutes(in.Quiet.End); err != nil {
			return nil, fieldErr("quiet_hours.end", "must be HH:MM")
		}
		if in.Quiet.Zone != "" {
			if _, ok := tz.Resolve(in.Quiet.Zone); !ok {
				return nil, fieldErr("quiet_hours.timezone", "unknown timezone")
			}
		}
	}
	p := &preference.Preference{UserID: userID, Email: in.Email, Quiet: in.Quiet}
	if err := u.Prefs.Upsert(ctx, p); err != nil {
		return nil, err
	}
	if u.Cache != nil {
		_ = u.Cache.Invalidate(ctx, userID)
	}
	return p, nil
}

func (u *Usecase) GetPreference(ctx context.Context, userID int64) (*preference.Preference, error) {
	return u.Prefs.GetByUser(ctx, userID)
}

const maxHistoryLimit = 200

func (u *Usecase) ListNotifications(ctx context.Context, userID int64, limit int) ([]*notification.Notification, error) {
	if userID <= 0 {
		return nil, fieldErr("user_id", "must be positive")
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = 50
	}
	return u.Notifs.ListByUser(ctx, userID, limit)
}
