package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient defines the subset of Redis operations the cache and rate
// limiter need, wrapped in an interface so tests can substitute fakes.
type RedisClient interface {
	// Get returns the value for key, or redis.Nil when absent
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with the given TTL
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes the given keys
	Del(ctx context.Context, keys ...string) error

	// Keys returns all keys matching the glob pattern
	Keys(ctx context.Context, pattern string) ([]string, error)

	// ZAdd adds a member with the given score to a sorted set
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZRemRangeByScore removes sorted-set members with scores in [min, max]
	ZRemRangeByScore(ctx context.Context, key string, min, max string) error

	// ZCard returns the cardinality of a sorted set
	ZCard(ctx context.Context, key string) (int64, error)

	// Expire refreshes the expiry of a key
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping checks if Redis is reachable
	Ping(ctx context.Context) error

	// Close closes the Redis connection
	Close() error
}

// realRedisClient wraps the actual go-redis client
type realRedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, username, password string, db int) RedisClient {
	return &realRedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Username: username,
			Password: password,
			DB:       db,
		}),
	}
}

func (r *realRedisClient) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *realRedisClient) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *realRedisClient) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *realRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	return r.client.Keys(ctx, pattern).Result()
}

func (r *realRedisClient) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return r.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

func (r *realRedisClient) ZRemRangeByScore(ctx context.Context, key string, min, max string) error {
	return r.client.ZRemRangeByScore(ctx, key, min, max).Err()
}

func (r *realRedisClient) ZCard(ctx context.Context, key string) (int64, error) {
	return r.client.ZCard(ctx, key).Result()
}

func (r *realRedisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.Expire(ctx, key, ttl).Err()
}

func (r *realRedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *realRedisClient) Close() error {
	return r.client.Close()
}

// IsNil reports whether err is the Redis "key does not exist" reply.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
