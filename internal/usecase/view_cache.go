package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// viewCache memoizes derived views under the current ledger version. A nil
// cache computes every time.
type viewCache struct {
	cache    ReportCache
	recorder Recorder
	ttl      time.Duration
}

func newViewCache(cache ReportCache, recorder Recorder, ttl time.Duration) viewCache {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return viewCache{cache: cache, recorder: recorder, ttl: ttl}
}

// cachedView returns the cached value for (view, key) or computes and stores
// it. Cache failures are logged and the view is computed directly.
func cachedView[T any](ctx context.Context, vc viewCache, view, key string, compute func() (T, error)) (T, error) {
	if vc.cache == nil {
		return compute()
	}
	logger := zerolog.Ctx(ctx)

	version, err := vc.cache.Version(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("view", view).Msg("report cache unavailable")
		return compute()
	}
	fullKey := fmt.Sprintf("%s:v%d:%s", view, version, key)

	if raw, ok, err := vc.cache.Get(ctx, fullKey); err != nil {
		logger.Warn().Err(err).Str("key", fullKey).Msg("report cache read failed")
	} else if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			vc.recorder.CacheLookup(view, true)
			return cached, nil
		}
	}
	vc.recorder.CacheLookup(view, false)

	value, err := compute()
	if err != nil {
		return value, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return value, err
	}
	if err := vc.cache.Set(ctx, fullKey, raw, vc.ttl); err != nil {
		logger.Warn().Err(err).Str("key", fullKey).Msg("report cache write failed")
	}
	return value, nil
}

// invalidateViews bumps the ledger version after a committed write.
func invalidateViews(ctx context.Context, cache ReportCache) {
	if cache == nil {
		return
	}
	if _, err := cache.BumpVersion(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate report cache")
	}
}
