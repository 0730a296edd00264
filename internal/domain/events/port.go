package events

import "context"

type ReminderEvents interface {
	PublishReminderDue(ctx context.Context, ev ReminderDue) error
}
