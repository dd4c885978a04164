package repository

import (
	"AI-Content-Creator-Backend/internal/logging"
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Stores bundles the quota and cache stores the content service needs.
type Stores struct {
	Usage  UsageStore
	Cache  ContentCache
	client *redis.Client
}

func (s *Stores) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// OpenStores connects to redis. When redis is unreachable usage falls back to
// process memory and caching is served from memory as well.
func OpenStores(ctx context.Context, redisURL string, cacheTTL time.Duration) *Stores {
	log := logging.Named("repository")
	client, err := connect(ctx, redisURL)
	if err != nil {
		log.Error("could not connect to redis, using in-memory stores", zap.Error(err))
		return &Stores{
			Usage: NewMemoryUsageRepository(),
			Cache: NewMemoryContentCache(cacheTTL),
		}
	}
	log.Info("connected to redis", zap.String("addr", client.Options().Addr))
	return &Stores{
		Usage:  NewRedisUsageRepository(client),
		Cache:  NewRedisContentCache(client, cacheTTL),
		client: client,
	}
}

func connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}
