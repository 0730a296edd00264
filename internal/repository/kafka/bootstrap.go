package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BootstrapConsumer makes sure the topic exists before handing out a
// consumer, so a fresh environment does not spin on unknown-topic errors.
// Topic creation failures are logged inside EnsureTopic and tolerated here;
// the broker may have the topic already.
func BootstrapConsumer(ctx context.Context, cfg *ConsumerConfig, logger *zap.Logger) *Consumer {
	spec := TopicSpec{
		Name:              cfg.Topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
		MaxWait:           5 * time.Second,
	}
	if err := EnsureTopic(ctx, cfg.Brokers, spec, logger); err != nil && logger != nil {
		logger.Warn("topic bootstrap failed, consuming anyway",
			zap.String("topic", cfg.Topic), zap.Error(err))
	}
	return NewConsumer(cfg)
}
