package repo

import (
	"context"

	"github.com/kseslo/deadliner/internal/domain/deadline"
	"github.com/kseslo/deadliner/internal/domain/outbox"
)

// Tx runs fn inside one database transaction; repos called within join it.
type Tx interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Deadlines struct{ R deadline.Repo }
type Outbox struct{ R outbox.Repository }

func (a Deadlines) FetchDue(ctx context.Context, limit int) ([]*deadline.Deadline, error) {
	return a.R.FetchDue(ctx, limit)
}

func (o Outbox) Enqueue(ctx context.Context, key string, kind outbox.Kind, data []byte) error {
	return o.R.Enqueue(ctx, key, kind, data)
}
