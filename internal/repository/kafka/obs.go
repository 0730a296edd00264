package kafka

import (
	"github.com/segmentio/kafka-go"
)

// headerCarrier bridges OTel text-map propagation and Kafka message headers.
type headerCarrier map[string]string

func (c headerCarrier) Get(key string) string { return c[key] }
func (c headerCarrier) Set(key, value string) { c[key] = value }

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

func (c headerCarrier) ToKafka() []kafka.Header {
	out := make([]kafka.Header, 0, len(c))
	for k, v := range c {
		out = append(out, kafka.Header{Key: k, Value: []byte(v)})
	}
	return out
}

func carrierFromHeaders(hs []kafka.Header) headerCarrier {
	c := make(headerCarrier, len(hs))
	for _, h := range hs {
		c[h.Key] = string(h.Value)
	}
	return c
}
