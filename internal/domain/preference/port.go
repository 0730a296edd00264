package preference

import "context"

type Repo interface {
	Upsert(ctx context.Context, p *Preference) error
	GetByUser(ctx context.Context, userID int64) (*Preference, error)
}
