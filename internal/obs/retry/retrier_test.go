package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, Policy{
		Name:     "test",
		Attempts: 5,
		Backoff:  ExpoJitter{Base: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("want 3 calls, got %d", calls)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	sentinel := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return sentinel
	}, Policy{
		Name:      "test_permanent",
		Attempts:  5,
		Backoff:   ExpoJitter{Base: time.Millisecond},
		Retryable: func(err error) bool { return !errors.Is(err, sentinel) },
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("want sentinel, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("want 1 call, got %d", calls)
	}
}

func TestDo_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, func() error { return errors.New("always") }, Policy{
		Name:     "test_cancel",
		Attempts: 10,
		Backoff:  ExpoJitter{Base: time.Second},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestExpoJitter_CapsAtMax(t *testing.T) {
	b := ExpoJitter{Base: time.Second, Max: 4 * time.Second}
	if got := b.Next(10); got > 4*time.Second {
		t.Fatalf("backoff exceeded max: %v", got)
	}
}
