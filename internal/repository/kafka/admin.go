package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	MaxWait           time.Duration
}

func (s *TopicSpec) normalize() {
	if s.NumPartitions <= 0 {
		s.NumPartitions = 1
	}
	if s.ReplicationFactor <= 0 {
		s.ReplicationFactor = 1
	}
	if s.MaxWait <= 0 {
		s.MaxWait = 5 * time.Second
	}
}

// EnsureTopic creates the topic on the cluster controller and waits until
// partition metadata is visible. A nil logger is allowed.
func EnsureTopic(ctx context.Context, brokers []string, spec TopicSpec, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	spec.normalize()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		log.Warn("kafka dial failed", zap.Error(err))
		return fmt.Errorf("dial %s: %w", brokers[0], err)
	}
	defer conn.Close()

	ctrl, err := conn.Controller()
	if err != nil {
		log.Warn("resolve controller", zap.Error(err))
		return fmt.Errorf("controller: %w", err)
	}

	cc, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port)))
	if err != nil {
		log.Warn("dial controller", zap.Error(err))
		return fmt.Errorf("dial controller: %w", err)
	}
	defer cc.Close()

	if err := cc.CreateTopics(kafka.TopicConfig{
		Topic:             spec.Name,
		NumPartitions:     spec.NumPartitions,
		ReplicationFactor: spec.ReplicationFactor,
	}); err != nil {
		// already-exists comes back as an error too
		log.Debug("create topic", zap.String("topic", spec.Name), zap.Error(err))
	}

	return waitForPartitions(conn, spec, log)
}

func waitForPartitions(conn *kafka.Conn, spec TopicSpec, log *zap.Logger) error {
	deadline := time.Now().Add(spec.MaxWait)
	for {
		if ps, err := conn.ReadPartitions(spec.Name); err == nil && len(ps) > 0 {
			log.Info("topic ready",
				zap.String("topic", spec.Name),
				zap.Int("partitions", len(ps)))
			return nil
		}
		if !time.Now().Before(deadline) {
			log.Warn("topic not confirmed ready in time", zap.String("topic", spec.Name))
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}
