package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// DailyWindow is how long a user's request counter lives after its first hit.
const DailyWindow = 24 * time.Hour

type UsageStore interface {
	DailyRequests(ctx context.Context, userID int64) (int, error)
	IncrementDailyRequests(ctx context.Context, userID int64) error
}

func usageKey(userID int64) string {
	return fmt.Sprintf("user_requests:%d:daily", userID)
}

type RedisUsageRepository struct {
	client *redis.Client
}

func NewRedisUsageRepository(client *redis.Client) *RedisUsageRepository {
	return &RedisUsageRepository{client: client}
}

func (r *RedisUsageRepository) DailyRequests(ctx context.Context, userID int64) (int, error) {
	n, err := r.client.Get(ctx, usageKey(userID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "read daily requests for user %d", userID)
	}
	return n, nil
}

func (r *RedisUsageRepository) IncrementDailyRequests(ctx context.Context, userID int64) error {
	key := usageKey(userID)
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return errors.Wrapf(err, "increment daily requests for user %d", userID)
	}
	// A counter left without expiry by an earlier failed Expire gets one now.
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return errors.Wrapf(err, "read expiry for user %d", userID)
	}
	if n == 1 || ttl < 0 {
		if err := r.client.Expire(ctx, key, DailyWindow).Err(); err != nil {
			return errors.Wrapf(err, "set expiry for user %d", userID)
		}
	}
	return nil
}

type usageEntry struct {
	count   int
	expires time.Time
}

type MemoryUsageRepository struct {
	mu    sync.RWMutex
	usage map[int64]usageEntry
	now   func() time.Time
}

func NewMemoryUsageRepository() *MemoryUsageRepository {
	return &MemoryUsageRepository{
		usage: make(map[int64]usageEntry),
		now:   time.Now,
	}
}

func (r *MemoryUsageRepository) DailyRequests(_ context.Context, userID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.usage[userID]
	if !ok || !r.now().Before(e.expires) {
		return 0, nil
	}
	return e.count, nil
}

func (r *MemoryUsageRepository) IncrementDailyRequests(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	e, ok := r.usage[userID]
	if !ok || !now.Before(e.expires) {
		e = usageEntry{expires: now.Add(DailyWindow)}
	}
	e.count++
	r.usage[userID] = e
	return nil
}
