package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, key, value []byte) error

type ConsumerConfig struct {
	Brokers       []string
	GroupID       string
	Topic         string
	FromBeginning bool
	Logger        *zap.Logger
}

// Consumer is a fetch/commit loop over a consumer group. Offsets are
// committed only after the handler returns nil, so a crashed notifier
// re-reads the event instead of losing it.
type Consumer struct {
	reader  *kafka.Reader
	log     *zap.Logger
	topic   string
	groupID string
}

const (
	fetchBackoffMin = 200 * time.Millisecond
	fetchBackoffMax = 5 * time.Second
)

func NewConsumer(cfg *ConsumerConfig) *Consumer {
	baseLog := cfg.Logger
	if baseLog == nil {
		baseLog = zap.L()
	}

	offset := int64(kafka.LastOffset)
	if cfg.FromBeginning {
		offset = kafka.FirstOffset
	}

	c := &Consumer{
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:               cfg.Brokers,
			GroupID:               cfg.GroupID,
			Topic:                 cfg.Topic,
			StartOffset:           offset,
			WatchPartitionChanges: true,
			MinBytes:              1e3,
			MaxBytes:              10e6,
			SessionTimeout:        10 * time.Second,
			RebalanceTimeout:      15 * time.Second,
			HeartbeatInterval:     3 * time.Second,
		}),
	}
	c.log = c.taggedLogger(baseLog)
	return c
}

func (c *Consumer) taggedLogger(l *zap.Logger) *zap.Logger {
	return l.With(
		zap.String("component", "kafka.consumer"),
		zap.String("topic", c.topic),
		zap.String("group", c.groupID),
	)
}

func (c *Consumer) WithLogger(l *zap.Logger) *Consumer {
	if l == nil {
		return c
	}
	cp := *c
	cp.log = cp.taggedLogger(l)
	return &cp
}

// Consume runs until ctx is canceled. Handler errors are logged and the
// message is NOT committed; broker errors back off exponentially.
func (c *Consumer) Consume(ctx context.Context, h Handler) error {
	c.log.Info("consumer started")
	backoff := fetchBackoffMin

	for ctx.Err() == nil {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, io.EOF) {
				c.log.Debug("fetch EOF, retrying", zap.Duration("backoff", backoff))
			} else {
				c.log.Warn("fetch failed, retrying", zap.Error(err), zap.Duration("backoff", backoff))
			}
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > fetchBackoffMax {
				backoff = fetchBackoffMax
			}
			continue
		}
		backoff = fetchBackoffMin

		if err := c.handle(ctx, h, msg); err != nil {
			c.log.Error("handler error",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				break
			}
			c.log.Warn("commit failed, offset will be re-read", zap.Error(err))
		}
	}

	c.log.Info("consumer stopped", zap.Error(ctx.Err()))
	return ctx.Err()
}

// handle runs h under a consumer span whose parent is the trace context
// carried in the message headers.
func (c *Consumer) handle(ctx context.Context, h Handler, msg kafka.Message) error {
	parent := otel.GetTextMapPropagator().Extract(ctx, carrierFromHeaders(msg.Headers))

	ctx, span := otel.Tracer("kafka.consumer").Start(parent, "kafka.consume "+c.topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingDestinationName(c.topic),
			semconv.MessagingOperationReceive,
		),
	)
	defer span.End()

	if err := h(ctx, msg.Key, msg.Value); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (c *Consumer) Close() error { return c.reader.Close() }
