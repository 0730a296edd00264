package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	kafkaAttempts    = 6
	kafkaBackoffBase = 200 * time.Millisecond
	kafkaBackoffMax  = 30 * time.Second
)

// DefaultKafkaPolicy retries every error with capped exponential backoff.
// Exhaustion caused by context cancellation is not worth an error line.
func DefaultKafkaPolicy(log *zap.Logger) Policy {
	if log == nil {
		log = zap.NewNop()
	}
	return Policy{
		Attempts:  kafkaAttempts,
		Backoff:   ExpoJitter{Base: kafkaBackoffBase, Max: kafkaBackoffMax, Jitter: 0.2},
		Retryable: func(err error) bool { return err != nil },
		OnAttempt: func(i int, err error) {
			log.Warn("publish retry", zap.Int("attempt", i+1), zap.Error(err))
		},
		OnExhaust: func(err error) {
			if !errors.Is(err, context.Canceled) {
				log.Error("publish retries exhausted", zap.Error(err))
			}
		},
	}
}
