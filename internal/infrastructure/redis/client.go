package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// ClientConfig controls how long NewClient waits for Redis to come up.
type ClientConfig struct {
	URL          string
	PingAttempts uint64
	PingInterval time.Duration
}

// NewClient creates a new Redis client, pinging with a constant backoff
// until the server answers or the attempts run out.
func NewClient(ctx context.Context, cfg ClientConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	interval := cfg.PingInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	var b backoff.BackOff = backoff.NewConstantBackOff(interval)
	if cfg.PingAttempts > 0 {
		b = backoff.WithMaxRetries(b, cfg.PingAttempts-1)
	} else {
		b = backoff.WithMaxRetries(b, 0)
	}

	if err := backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(b, ctx)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
