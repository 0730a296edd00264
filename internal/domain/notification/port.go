package notification

import "context"

// Repo stores dispatch records. ListByUser returns newest first, capped at
// limit.
type Repo interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Notification, error)
}
