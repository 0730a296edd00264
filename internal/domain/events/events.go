package events

import "time"

// ReminderDue is published when a deadline's reminder instant has passed.
// Events are JSON on the wire; the deadline id doubles as the partition key.
type ReminderDue struct {
	DeadlineID int64     `json:"deadline_id"`
	UserID     int64     `json:"user_id"`
	DueAt      time.Time `json:"due_at"`
	At         time.Time `json:"at"`
}
