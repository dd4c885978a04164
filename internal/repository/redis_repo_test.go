package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisUsageRepository_SetsDailyExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewRedisUsageRepository(client)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.IncrementDailyRequests(ctx, 7); err != nil {
			t.Fatalf("increment failed: %v", err)
		}
	}
	if n, err := repo.DailyRequests(ctx, 7); err != nil || n != 2 {
		t.Fatalf("expected 2, got %d (%v)", n, err)
	}
	if ttl := mr.TTL(usageKey(7)); ttl != DailyWindow {
		t.Fatalf("expected %s expiry, got %s", DailyWindow, ttl)
	}

	mr.FastForward(DailyWindow)
	if n, _ := repo.DailyRequests(ctx, 7); n != 0 {
		t.Fatalf("expected counter to expire, got %d", n)
	}
}

func TestRedisUsageRepository_RepairsMissingExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewRedisUsageRepository(client)

	// a counter whose first Expire never landed
	if err := mr.Set(usageKey(7), "3"); err != nil {
		t.Fatal(err)
	}
	if err := repo.IncrementDailyRequests(context.Background(), 7); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if ttl := mr.TTL(usageKey(7)); ttl != DailyWindow {
		t.Fatalf("expected expiry to be restored, got %s", ttl)
	}
}

func TestRedisContentCache(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisContentCache(client, time.Hour)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected clean miss, got %v %v", ok, err)
	}
	if err := cache.Set(ctx, "k", "content"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, ok, err := cache.Get(ctx, "k")
	if err != nil || !ok || got != "content" {
		t.Fatalf("expected hit, got %q %v %v", got, ok, err)
	}
	if ttl := mr.TTL(cacheKey("k")); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}
}
