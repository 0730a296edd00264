package preference

import (
	"time"

	"github.com/kseslo/deadliner/internal/domain/quiet"
)

// Preference holds a user's notification settings: where reminders go and
// the quiet-hours window during which they are deferred.
type Preference struct {
	UserID    int64        `json:"user_id"`
	Email     string       `json:"email"`
	Quiet     quiet.Window `json:"quiet_hours"`
	UpdatedAt time.Time    `json:"updated_at"`
}
