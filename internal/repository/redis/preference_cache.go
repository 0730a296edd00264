// Package redis caches user notification preferences in front of Postgres.
// The notifier reads preferences on every consumed event, so the cache
// keeps the hot path off the database; a short TTL bounds staleness.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kseslo/deadliner/internal/domain/preference"
)

type Config struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type PreferenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPreferenceCache(ctx context.Context, cfg Config) (*PreferenceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PreferenceCache{client: client, ttl: ttl}, nil
}

func key(userID int64) string { return fmt.Sprintf("pref:%d", userID) }

// Get returns (nil, nil) on a cache miss.
func (c *PreferenceCache) Get(ctx context.Context, userID int64) (*preference.Preference, error) {
	data, err := c.client.Get(ctx, key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var p preference.Preference
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode cached preference: %w", err)
	}
	return &p, nil
}

func (c *PreferenceCache) Set(ctx context.Context, p *preference.Preference) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(p.UserID), data, c.ttl).Err()
}

func (c *PreferenceCache) Invalidate(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, key(userID)).Err()
}

func (c *PreferenceCache) Close() error { return c.client.Close() }

func (c *PreferenceCache) Ping(ctx context.Context) error { return c.client.Ping(ctx).Err() }
