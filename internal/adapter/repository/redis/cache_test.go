package redis

import (
	"context"
	"testing"
	"time"
)

func TestReportCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewReportCache(client)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "view:v0:health:2026-03-01"); err != nil || ok {
		t.Fatalf("expected a clean miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Set(ctx, "view:v0:health:2026-03-01", []byte(`{"Score":72}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, ok, err := cache.Get(ctx, "view:v0:health:2026-03-01")
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if string(val) != `{"Score":72}` {
		t.Fatalf("unexpected cached value %s", val)
	}

	if keys := keysWithPrefix(t, mr, viewPrefix); len(keys) != 1 || keys[0] != viewPrefix+"view:v0:health:2026-03-01" {
		t.Fatalf("expected one namespaced key, got %v", keys)
	}
}

func TestReportCacheEntriesExpire(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewReportCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, err := cache.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected expired entry, got ok=%v err=%v", ok, err)
	}
}

func TestReportCacheVersion(t *testing.T) {
	client, _ := newTestRedisClient(t)

	cache := NewReportCache(client)
	ctx := context.Background()

	v, err := cache.Version(ctx)
	if err != nil || v != 0 {
		t.Fatalf("expected version 0, got %d (%v)", v, err)
	}

	for want := int64(1); want <= 3; want++ {
		got, err := cache.BumpVersion(ctx)
		if err != nil || got != want {
			t.Fatalf("expected bump to %d, got %d (%v)", want, got, err)
		}
	}

	v, err = cache.Version(ctx)
	if err != nil || v != 3 {
		t.Fatalf("expected version 3, got %d (%v)", v, err)
	}
}

func TestReportCacheUnavailable(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewReportCache(client)
	mr.Close()

	if _, err := cache.Version(context.Background()); err == nil {
		t.Fatal("expected an error from a stopped server")
	}
}
