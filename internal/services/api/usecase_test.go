package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kseslo/deadliner/internal/domain/deadline"
	"github.com/kseslo/deadliner/internal/domain/notification"
	"github.com/kseslo/deadliner/internal/domain/preference"
	"github.com/kseslo/deadliner/internal/domain/quiet"
	pg "github.com/kseslo/deadliner/internal/repository/postgres"
)

type fakeDeadlineRepo struct {
	byID   map[int64]*deadline.Deadline
	nextID int64
}

func newFakeDeadlineRepo() *fakeDeadlineRepo {
	return &fakeDeadlineRepo{byID: map[int64]*deadline.Deadline{}, nextID: 1}
}

func (r *fakeDeadlineRepo) Create(_ context.Context, d *deadline.Deadline) error {
	d.ID = r.nextID
	r.nextID++
	cp := *d
	r.byID[d.ID] = &cp
	return nil
}

func (r *fakeDeadlineRepo) GetByID(_ context.Context, id int64) (*deadline.Deadline, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, pg.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDeadlineRepo) ListByUser(_ context.Context, userID int64) ([]*deadline.Deadline, error) {
	var out []*deadline.Deadline
	for _, d := range r.byID {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDeadlineRepo) Update(_ context.Context, d *deadline.Deadline) error {
	if _, ok := r.byID[d.ID]; !ok {
		return pg.ErrNotFound
	}
	cp := *d
	r.byID[d.ID] = &cp
	return nil
}

func (r *fakeDeadlineRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return pg.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeDeadlineRepo) FetchDue(_ context.Context, _ int) ([]*deadline.Deadline, error) {
	return nil, nil
}

func (r *fakeDeadlineRepo) Reschedule(_ context.Context, _ int64, _ time.Time) error {
	return nil
}

type fakePrefRepo struct {
	byUser map[int64]*preference.Preference
}

func (r *fakePrefRepo) Upsert(_ context.Context, p *preference.Preference) error {
	cp := *p
	r.byUser[p.UserID] = &cp
	return nil
}

func (r *fakePrefRepo) GetByUser(_ context.Context, userID int64) (*preference.Preference, error) {
	p, ok := r.byUser[userID]
	if !ok {
		return nil, pg.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeInvalidator struct{ calls []int64 }

func (f *fakeInvalidator) Invalidate(_ context.Context, userID int64) error {
	f.calls = append(f.calls, userID)
	return nil
}

type fakeNotifRepo struct {
	rows []*notification.Notification
}

func (r *fakeNotifRepo) Create(_ context.Context, n *notification.Notification) error {
	r.rows = append(r.rows, n)
	return nil
}

func (r *fakeNotifRepo) ListByUser(_ context.Context, userID int64, limit int) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range r.rows {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func newTestUsecase() (*Usecase, *fakeDeadlineRepo, *fakePrefRepo, *fakeInvalidator) {
	dl := newFakeDeadlineRepo()
	pr := &fakePrefRepo{byUser: map[int64]*preference.Preference{}}
	inv := &fakeInvalidator{}
	uc := NewUsecase(dl, pr, &fakeNotifRepo{}, inv)
	uc.Clock = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return uc, dl, pr, inv
}

func TestCreateDeadline_DefaultsReminder(t *testing.T) {
	uc, dl, _, _ := newTestUsecase()

	d, err := uc.CreateDeadline(context.Background(), CreateDeadlineInput{
		UserID: 42,
		Title:  "IELTS registration",
		DueAt:  "2026-04-10T09:00:00Z",
		Zone:   "Asia/Tokyo",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), d.ID)
	require.Equal(t, "application", d.Kind)
	require.True(t, d.Active)
	require.Equal(t, d.DueAt.Add(-24*time.Hour), d.RemindAt)
	require.Len(t, dl.byID, 1)
}

func TestCreateDeadline_ReminderNeverInPast(t *testing.T) {
	uc, _, _, _ := newTestUsecase()

	// due tomorrow at 02:00; the default 24h lead would land before "now"
	d, err := uc.CreateDeadline(context.Background(), CreateDeadlineInput{
		UserID: 42,
		Title:  "visa biometrics",
		DueAt:  "2026-03-02T02:00:00Z",
	})
	require.NoError(t, err)
	require.Equal(t, uc.Clock(), d.RemindAt)
}

func TestCreateDeadline_Validation(t *testing.T) {
	uc, _, _, _ := newTestUsecase()

	cases := []struct {
		name  string
		in    CreateDeadlineInput
		field string
	}{
		{"empty title", CreateDeadlineInput{UserID: 1, DueAt: "2026-04-10"}, "title"},
		{"bad user", CreateDeadlineInput{Title: "x", DueAt: "2026-04-10"}, "user_id"},
		{"bad due_at", CreateDeadlineInput{UserID: 1, Title: "x", DueAt: "next tuesday"}, "due_at"},
		{"bad zone", CreateDeadlineInput{UserID: 1, Title: "x", DueAt: "2026-04-10", Zone: "Mars/Olympus"}, "timezone"},
		{"remind after due", CreateDeadlineInput{UserID: 1, Title: "x", DueAt: "2026-04-10", RemindAt: "2026-04-11"}, "remind_at"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateDeadline(context.Background(), tc.in)
			require.ErrorIs(t, err, ErrValidation)
			var fe FieldError
			require.ErrorAs(t, err, &fe)
			require.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestUpdateDeadline_KeepsOwner(t *testing.T) {
	uc, dl, _, _ := newTestUsecase()

	created, err := uc.CreateDeadline(context.Background(), CreateDeadlineInput{
		UserID: 7, Title: "dorm application", DueAt: "2026-05-01T00:00:00Z",
	})
	require.NoError(t, err)

	upd, err := uc.UpdateDeadline(context.Background(), created.ID, CreateDeadlineInput{
		UserID: 999, // ignored: ownership is immutable
		Title:  "dorm application (extended)",
		DueAt:  "2026-05-15T00:00:00Z",
	}, false)
	require.NoError(t, err)
	require.Equal(t, int64(7), upd.UserID)
	require.False(t, upd.Active)
	require.Equal(t, "dorm application (extended)", dl.byID[created.ID].Title)
}

func TestCountdown_ComputesAgainstClock(t *testing.T) {
	uc, _, _, _ := newTestUsecase()

	created, err := uc.CreateDeadline(context.Background(), CreateDeadlineInput{
		UserID: 7, Title: "scholarship essay", DueAt: "2026-03-03T14:30:00Z",
	})
	require.NoError(t, err)

	r, d, err := uc.Countdown(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, d.ID)
	require.False(t, r.Expired)
	require.Equal(t, 2, r.Days)
	require.Equal(t, 2, r.Hours)
	require.Equal(t, 30, r.Minutes)
}

func TestCountdown_NotFound(t *testing.T) {
	uc, _, _, _ := newTestUsecase()

	_, _, err := uc.Countdown(context.Background(), 404)
	require.ErrorIs(t, err, pg.ErrNotFound)
}

func TestPutPreference_InvalidatesCache(t *testing.T) {
	uc, _, pr, inv := newTestUsecase()

	p, err := uc.PutPreference(context.Background(), 42, PreferenceInput{
		Email: "student@example.com",
		Quiet: quiet.Window{Enabled: true, Start: "22:00", End: "07:00", Zone: "Europe/Berlin"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), p.UserID)
	require.Contains(t, pr.byUser, int64(42))
	require.Equal(t, []int64{42}, inv.calls)
}

func TestPutPreference_RejectsMalformedWindow(t *testing.T) {
	uc, _, _, inv := newTestUsecase()

	_, err := uc.PutPreference(context.Background(), 42, PreferenceInput{
		Email: "student@example.com",
		Quiet: quiet.Window{Enabled: true, Start: "25:99", End: "07:00"},
	})
	require.ErrorIs(t, err, ErrValidation)
	require.Empty(t, inv.calls)

	var fe FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "quiet_hours.start", fe.Field)
}

func TestListNotifications_CapsLimit(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	nr := uc.Notifs.(*fakeNotifRepo)
	for i := 0; i < 60; i++ {
		_ = nr.Create(context.Background(), &notification.Notification{UserID: 9, DeadlineID: int64(i)})
	}

	ns, err := uc.ListNotifications(context.Background(), 9, 0)
	require.NoError(t, err)
	require.Len(t, ns, 50)

	_, err = uc.ListNotifications(context.Background(), -1, 10)
	require.ErrorIs(t, err, ErrValidation)
}

func TestPutPreference_DisabledWindowSkipsParsing(t *testing.T) {
	uc, _, _, _ := newTestUsecase()

	// disabled windows may carry stale garbage from old clients
	_, err := uc.PutPreference(context.Background(), 42, PreferenceInput{
		Email: "student@example.com",
		Quiet: quiet.Window{Enabled: false, Start: "garbage"},
	})
	require.NoError(t, err)
}
