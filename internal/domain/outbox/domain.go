package outbox

import (
	"context"
	"time"
)

// Status is the lifecycle column of an outbox row. Rows are inserted as
// StatusCreated, claimed as StatusInProgress and finalized as StatusSuccess;
// a stale claim is re-picked after a TTL.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
)

// Kind routes a message to its handler.
type Kind int

const (
	KindReminderDue Kind = 1
)

// Message is a pending event together with the trace context captured when
// it was enqueued.
type Message struct {
	IdempotencyKey string
	Kind           Kind
	Data           []byte
	Status         Status

	Traceparent string
	Tracestate  string
	Baggage     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	// Enqueue inserts a row, deduplicating on key.
	Enqueue(ctx context.Context, key string, kind Kind, data []byte) error
	// PickBatch claims up to batch pending rows for processing.
	PickBatch(ctx context.Context, batch int, inProgressTTL time.Duration) ([]Message, error)
	// MarkSuccess finalizes delivered rows by key.
	MarkSuccess(ctx context.Context, keys []string) error
}

// KindHandler processes the payload of a single message.
type KindHandler func(ctx context.Context, data []byte) error

// GlobalHandler resolves the handler for a message kind.
type GlobalHandler func(kind Kind) (KindHandler, error)
