package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"issue-classifier/internal/domain/entity"
	"issue-classifier/internal/domain/port"
)

const redisKeyPrefix = "verdict:"

// RedisOptions configures the Redis verdict cache.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisVerdictCache stores verdicts as JSON in Redis, so several replicas share them.
type RedisVerdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisVerdictCache opens a client; the connection is established lazily by go-redis.
func NewRedisVerdictCache(opts RedisOptions) *RedisVerdictCache {
	return &RedisVerdictCache{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Address,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		ttl: opts.TTL,
	}
}

// Ping checks connectivity.
func (c *RedisVerdictCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the cached verdict; redis.Nil is a miss, not an error.
func (c *RedisVerdictCache) Get(ctx context.Context, key string) (*entity.ClassificationVerdict, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var v entity.ClassificationVerdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false, fmt.Errorf("decode cached verdict: %w", err)
	}
	return &v, true, nil
}

// Set stores v with the configured TTL.
func (c *RedisVerdictCache) Set(ctx context.Context, key string, v *entity.ClassificationVerdict) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *RedisVerdictCache) Close() error {
	return c.client.Close()
}

var _ port.VerdictCache = (*RedisVerdictCache)(nil)
