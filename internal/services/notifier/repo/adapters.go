package repo

import (
	"context"
	"time"

	"github.com/kseslo/deadliner/internal/domain/deadline"
	"github.com/kseslo/deadliner/internal/domain/notification"
	"github.com/kseslo/deadliner/internal/domain/preference"
)

type Deadlines struct{ R deadline.Repo }
type Notifications struct{ R notification.Repo }

func (a Deadlines) GetByID(ctx context.Context, id int64) (*deadline.Deadline, error) {
	return a.R.GetByID(ctx, id)
}

func (a Deadlines) Reschedule(ctx context.Context, id int64, remindAt time.Time) error {
	return a.R.Reschedule(ctx, id, remindAt)
}

func (a Notifications) Create(ctx context.Context, n *notification.Notification) error {
	return a.R.Create(ctx, n)
}

// PrefCache is the read-through cache in front of the preference repo.
type PrefCache interface {
	Get(ctx context.Context, userID int64) (*preference.Preference, error)
	Set(ctx context.Context, p *preference.Preference) error
}

// Preferences reads through the cache when one is configured. Cache
// failures fall back to the database silently; the cache is an
// optimization, not a source of truth.
type Preferences struct {
	Cache PrefCache
	R     preference.Repo
}

func (p Preferences) GetByUser(ctx context.Context, userID int64) (*preference.Preference, error) {
	if p.Cache != nil {
		if pref, err := p.Cache.Get(ctx, userID); err == nil && pref != nil {
			return pref, nil
		}
	}
	pref, err := p.R.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		_ = p.Cache.Set(ctx, pref)
	}
	return pref, nil
}
