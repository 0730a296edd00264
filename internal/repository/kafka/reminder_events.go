package kafka

import (
	"context"

	"github.com/kseslo/deadliner/internal/domain/events"
)

type ReminderEventsKafka struct {
	p *Producer
}

func NewReminderEventsKafka(p *Producer) *ReminderEventsKafka { return &ReminderEventsKafka{p: p} }

var _ events.ReminderEvents = (*ReminderEventsKafka)(nil)

func (e *ReminderEventsKafka) PublishReminderDue(ctx context.Context, ev events.ReminderDue) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(ev.DeadlineID), ev)
}
