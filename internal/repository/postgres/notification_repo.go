package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/kseslo/deadliner/internal/domain/notification"
)

var _ notification.Repo = (*NotificationRepoImpl)(nil)

// NotificationRepoImpl records dispatched reminders and serves the per-user
// history endpoint.
type NotificationRepoImpl struct{ db *DB }

func NewNotificationRepo(db *DB) *NotificationRepoImpl { return &NotificationRepoImpl{db: db} }

const qNotifInsert = `
INSERT INTO notifications (deadline_id, user_id, channel, sent_at, payload)
VALUES ($1, $2, $3, COALESCE($4, now()), $5)
RETURNING id, sent_at;`

const qNotifByUser = `
SELECT id, deadline_id, user_id, channel, sent_at, payload
FROM notifications
WHERE user_id = $1
ORDER BY sent_at DESC
LIMIT $2;`

// Create inserts the row and backfills ID and SentAt. A zero SentAt lets
// the database stamp now().
func (r *NotificationRepoImpl) Create(ctx context.Context, n *notification.Notification) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.Pool.QueryRow(ctx, qNotifInsert,
		n.DeadlineID, n.UserID, n.Channel, nullTime(n.SentAt), n.Payload)
	if err := row.Scan(&n.ID, &n.SentAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepoImpl) ListByUser(ctx context.Context, userID int64, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qNotifByUser, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n := new(notification.Notification)
		if err := rows.Scan(&n.ID, &n.DeadlineID, &n.UserID, &n.Channel, &n.SentAt, &n.Payload); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
