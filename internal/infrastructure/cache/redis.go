package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/consult-review/pkg/config"
)

const redisKeyPrefix = "consult-review:inflight:"

// RedisRegistry shares in-flight claims between service replicas
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisRegistry creates a registry on client. ttl bounds a claim left
// behind by a crashed replica and must be positive.
func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisRegistry{client: client, ttl: ttl}
}

// TryAcquire claims entityID with SET NX
func (r *RedisRegistry) TryAcquire(ctx context.Context, entityID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, redisKeyPrefix+entityID, time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire %s: %w", entityID, err)
	}
	return ok, nil
}

// Release deletes the claim on entityID
func (r *RedisRegistry) Release(ctx context.Context, entityID string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+entityID).Err(); err != nil {
		return fmt.Errorf("failed to release %s: %w", entityID, err)
	}
	return nil
}
