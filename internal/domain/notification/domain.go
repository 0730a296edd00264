package notification

import (
	"context"
	"time"
)

// Notification is the persisted record of a dispatched reminder.
type Notification struct {
	ID         int64     `json:"id"`
	DeadlineID int64     `json:"deadline_id"`
	UserID     int64     `json:"user_id"`
	Channel    string    `json:"channel"`
	SentAt     time.Time `json:"sent_at"`
	Payload    string    `json:"payload"`
}

// Sender delivers a rendered notification to a recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Clock abstracts time.Now so dispatch decisions are testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
