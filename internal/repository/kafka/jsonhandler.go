package kafka

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONHandler adapts a typed event callback into a raw message Handler.
// Undecodable payloads are reported as errors rather than handled with a
// zero value.
func JSONHandler[M any](handle func(ctx context.Context, key []byte, ev *M) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		var ev M
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		return handle(ctx, key, &ev)
	}
}
