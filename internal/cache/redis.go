package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sky-catalog/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const scanCount = 100

// NewRedisClient creates a Redis client and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		// Per-call deadlines bound socket reads and writes too.
		ContextTimeoutEnabled: true,
	})

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connecting to redis")

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// redisCache implements Cache on top of a Redis client.
type redisCache struct {
	client    *redis.Client
	opTimeout time.Duration
}

// NewRedisCache wraps client as a Cache. Each call is bounded by opTimeout.
func NewRedisCache(client *redis.Client, opTimeout time.Duration) Cache {
	return &redisCache{client: client, opTimeout: opTimeout}
}

func (c *redisCache) Get(ctx context.Context, key string) Lookup {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	value, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return Lookup{State: Miss}
	case err != nil:
		return Lookup{State: Failed, Err: fmt.Errorf("redis get %s: %w", key, err)}
	default:
		return Lookup{State: Hit, Value: value}
	}
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return Outcome{Err: fmt.Errorf("redis set %s: %w", key, err)}
	}
	return Outcome{}
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) Outcome {
	if len(keys) == 0 {
		return Outcome{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	n, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return Outcome{Err: fmt.Errorf("redis del: %w", err)}
	}
	return Outcome{Deleted: n}
}

// DeleteByPrefix walks the keyspace with SCAN and deletes each matching page.
// The whole walk shares one operation timeout.
func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", scanCount).Result()
		if err != nil {
			return Outcome{Deleted: deleted, Err: fmt.Errorf("redis scan %s*: %w", prefix, err)}
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return Outcome{Deleted: deleted, Err: fmt.Errorf("redis del: %w", err)}
			}
			deleted += n
		}

		if next == 0 {
			return Outcome{Deleted: deleted}
		}
		cursor = next
	}
}
