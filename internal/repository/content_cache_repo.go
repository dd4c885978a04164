package repository

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

type ContentCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, content string) error
}

func cacheKey(key string) string {
	return "cache:" + key
}

type RedisContentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContentCache(client *redis.Client, ttl time.Duration) *RedisContentCache {
	return &RedisContentCache{client: client, ttl: ttl}
}

func (c *RedisContentCache) Get(ctx context.Context, key string) (string, bool, error) {
	content, err := c.client.Get(ctx, cacheKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "read cached content")
	}
	return content, true, nil
}

func (c *RedisContentCache) Set(ctx context.Context, key, content string) error {
	return errors.Wrap(c.client.Set(ctx, cacheKey(key), content, c.ttl).Err(), "write cached content")
}

type cacheEntry struct {
	content string
	expires time.Time
}

type MemoryContentCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewMemoryContentCache(ttl time.Duration) *MemoryContentCache {
	return &MemoryContentCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *MemoryContentCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		return "", false, nil
	}
	return e.content, true, nil
}

func (c *MemoryContentCache) Set(_ context.Context, key, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{content: content, expires: now.Add(c.ttl)}
	return nil
}
