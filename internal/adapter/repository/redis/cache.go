package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	viewPrefix = "fincore:view:"
	versionKey = "fincore:ledger-version"
)

// ReportCache implements usecase.ReportCache on Redis. Entries expire on
// their own; the ledger version counter makes stale ones unreachable
// before that.
type ReportCache struct {
	client redis.UniversalClient
}

// NewReportCache creates a new ReportCache.
func NewReportCache(client redis.UniversalClient) *ReportCache {
	return &ReportCache{client: client}
}

// Get retrieves a cached view. A missing key is not an error.
func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, viewPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores a view with TTL.
func (c *ReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, viewPrefix+key, value, ttl).Err()
}

// Version returns the current ledger version, zero before the first write.
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// BumpVersion advances the ledger version after a committed write.
func (c *ReportCache) BumpVersion(ctx context.Context) (int64, error) {
	return c.client.Incr(ctx, versionKey).Result()
}
