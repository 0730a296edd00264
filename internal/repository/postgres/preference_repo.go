package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kseslo/deadliner/internal/domain/preference"
)

var _ preference.Repo = (*PreferenceRepoImpl)(nil)

type PreferenceRepoImpl struct{ db *DB }

func NewPreferenceRepo(db *DB) *PreferenceRepoImpl { return &PreferenceRepoImpl{db: db} }

const (
	qPrefUpsert = `
INSERT INTO preferences (user_id, email, quiet_enabled, quiet_start, quiet_end, quiet_tz)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE
SET email = EXCLUDED.email,
    quiet_enabled = EXCLUDED.quiet_enabled,
    quiet_start = EXCLUDED.quiet_start,
    quiet_end = EXCLUDED.quiet_end,
    quiet_tz = EXCLUDED.quiet_tz,
    updated_at = now()
RETURNING updated_at;`

	qPrefByUser = `
SELECT user_id, email, quiet_enabled, quiet_start, quiet_end, quiet_tz, updated_at
FROM preferences
WHERE user_id = $1;`
)

func (r *PreferenceRepoImpl) Upsert(ctx context.Context, p *preference.Preference) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qPrefUpsert,
		p.UserID,
		p.Email,
		p.Quiet.Enabled,
		p.Quiet.Start,
		p.Quiet.End,
		p.Quiet.Zone,
	).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}
	return nil
}

func (r *PreferenceRepoImpl) GetByUser(ctx context.Context, userID int64) (*preference.Preference, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p preference.Preference
	err := r.db.Pool.QueryRow(ctx, qPrefByUser, userID).Scan(
		&p.UserID,
		&p.Email,
		&p.Quiet.Enabled,
		&p.Quiet.Start,
		&p.Quiet.End,
		&p.Quiet.Zone,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan preference: %w", err)
	}
	return &p, nil
}
