package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kseslo/deadliner/internal/domain/deadline"
)

var _ deadline.Repo = (*DeadlineRepoImpl)(nil)

type DeadlineRepoImpl struct {
	db *DB
}

func NewDeadlineRepo(db *DB) *DeadlineRepoImpl { return &DeadlineRepoImpl{db: db} }

const (
	qDeadlineCols = `id, user_id, title, kind, due_at, timezone, remind_at, reminder_sent, active, created_at, updated_at`

	qDeadlineInsert = `
INSERT INTO deadlines (user_id, title, kind, due_at, timezone, remind_at, active)
VALUES ($1, $2, $3, $4, $5, $6, TRUE)
RETURNING ` + qDeadlineCols + `;`

	qDeadlineByID = `
SELECT ` + qDeadlineCols + `
FROM deadlines
WHERE id = $1;`

	qDeadlineByUser = `
SELECT ` + qDeadlineCols + `
FROM deadlines
WHERE user_id = $1
ORDER BY due_at;`

	qDeadlineUpdate = `
UPDATE deadlines
SET title = $2, kind = $3, due_at = $4, timezone = $5, remind_at = $6,
    reminder_sent = FALSE, active = $7, updated_at = now()
WHERE id = $1
RETURNING ` + qDeadlineCols + `;`

	qDeadlineDelete = `DELETE FROM deadlines WHERE id = $1;`

	// Due rows are claimed and flagged in one statement so concurrent
	// scheduler instances never dispatch the same reminder twice.
	qDeadlineFetchDue = `
WITH due AS (
    SELECT id
    FROM deadlines
    WHERE active = TRUE AND reminder_sent = FALSE AND remind_at <= now()
    ORDER BY remind_at
    FOR UPDATE SKIP LOCKED
    LIMIT $1
)
UPDATE deadlines d
SET reminder_sent = TRUE, updated_at = now()
FROM due
WHERE d.id = due.id
RETURNING d.id, d.user_id, d.title, d.kind, d.due_at, d.timezone, d.remind_at, d.reminder_sent, d.active, d.created_at, d.updated_at;`

	qDeadlineReschedule = `
UPDATE deadlines
SET remind_at = $2, reminder_sent = FALSE, updated_at = now()
WHERE id = $1;`
)

func scanDeadline(row pgx.Row, d *deadline.Deadline) error {
	if err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Title,
		&d.Kind,
		&d.DueAt,
		&d.Zone,
		&d.RemindAt,
		&d.ReminderSent,
		&d.Active,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan deadline: %w", err)
	}
	return nil
}

func (r *DeadlineRepoImpl) Create(ctx context.Context, d *deadline.Deadline) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.Pool.QueryRow(ctx, qDeadlineInsert,
		d.UserID, d.Title, d.Kind, d.DueAt.UTC(), d.Zone, d.RemindAt.UTC())
	return scanDeadline(row, d)
}

func (r *DeadlineRepoImpl) GetByID(ctx context.Context, id int64) (*deadline.Deadline, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var d deadline.Deadline
	if err := scanDeadline(r.db.Pool.QueryRow(ctx, qDeadlineByID, id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeadlineRepoImpl) ListByUser(ctx context.Context, userID int64) ([]*deadline.Deadline, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qDeadlineByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("query deadlines: %w", err)
	}
	defer rows.Close()

	var out []*deadline.Deadline
	for rows.Next() {
		var d deadline.Deadline
		if err := scanDeadline(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *DeadlineRepoImpl) Update(ctx context.Context, d *deadline.Deadline) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.Pool.QueryRow(ctx, qDeadlineUpdate,
		d.ID, d.Title, d.Kind, d.DueAt.UTC(), d.Zone, d.RemindAt.UTC(), d.Active)
	return scanDeadline(row, d)
}

func (r *DeadlineRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qDeadlineDelete, id)
	if err != nil {
		return fmt.Errorf("delete deadline: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FetchDue participates in an ambient transaction when one is present, so
// callers can claim rows and enqueue outbox events atomically.
func (r *DeadlineRepoImpl) FetchDue(ctx context.Context, limit int) ([]*deadline.Deadline, error) {
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	rows, err := eq.Query(ctx, qDeadlineFetchDue, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch due: %w", err)
	}
	defer rows.Close()

	var out []*deadline.Deadline
	for rows.Next() {
		var d deadline.Deadline
		if err := scanDeadline(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *DeadlineRepoImpl) Reschedule(ctx context.Context, id int64, remindAt time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	cmd, err := eq.Exec(ctx, qDeadlineReschedule, id, remindAt.UTC())
	if err != nil {
		return fmt.Errorf("reschedule deadline: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
