package deadline

import (
	"context"
	"time"
)

type Repo interface {
	Create(ctx context.Context, d *Deadline) error
	GetByID(ctx context.Context, id int64) (*Deadline, error)
	ListByUser(ctx context.Context, userID int64) ([]*Deadline, error)
	Update(ctx context.Context, d *Deadline) error
	Delete(ctx context.Context, id int64) error

	// FetchDue returns active deadlines whose reminder is due and marks
	// them sent in the same transaction, so concurrent schedulers never
	// pick the same row twice.
	FetchDue(ctx context.Context, limit int) ([]*Deadline, error)

	// Reschedule moves the reminder to a later instant and clears the
	// sent flag. Used when quiet hours defer a dispatch.
	Reschedule(ctx context.Context, id int64, remindAt time.Time) error
}
