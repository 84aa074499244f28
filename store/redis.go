package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage is a Redis-backed durable substrate.
type RedisStorage struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds configuration for the Redis storage.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "lingo:")
}

// NewRedisStorage creates a Redis storage with the given configuration.
func NewRedisStorage(cfg RedisConfig) (*RedisStorage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStorageFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStorageFromClient creates a RedisStorage from an existing Redis
// client.
func NewRedisStorageFromClient(client *redis.Client, keyPrefix string) *RedisStorage {
	if keyPrefix == "" {
		keyPrefix = "lingo:"
	}
	return &RedisStorage{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a value from Redis. An absent key is (nil, nil).
func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores a value in Redis without expiry; the store applies its own
// TTL to entries.
func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.keyPrefix+key, value, 0).Err()
}

// Close closes the Redis connection.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}

// Ping tests the Redis connection.
func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Verify RedisStorage implements Storage
var _ Storage = (*RedisStorage)(nil)
