package deadline

import "time"

// Deadline is a point-in-time cutoff tied to a user's application or
// document. DueAt is stored in UTC; Zone only affects how the instant is
// displayed, never what is stored.
type Deadline struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Title        string    `json:"title"`
	Kind         string    `json:"kind"`
	DueAt        time.Time `json:"due_at"`
	Zone         string    `json:"timezone"`
	RemindAt     time.Time `json:"remind_at"`
	ReminderSent bool      `json:"reminder_sent"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
