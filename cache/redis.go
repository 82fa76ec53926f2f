package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/zerr"
)

// DefaultRedisKeyPrefix is prepended to every key the Redis persister writes.
const DefaultRedisKeyPrefix = "gophrase:"

// redisEntriesKey holds the serialized cache under the key prefix.
const redisEntriesKey = "entries"

// RedisPersister keeps the whole cache as one JSON value in Redis.
type RedisPersister struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds configuration for the Redis persister.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "gophrase:")
}

// NewRedisPersister connects to Redis with the given configuration.
func NewRedisPersister(cfg RedisConfig) (*RedisPersister, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisPersisterFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisPersisterFromClient creates a RedisPersister from an existing client.
func NewRedisPersisterFromClient(client *redis.Client, keyPrefix string) *RedisPersister {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &RedisPersister{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Key returns the Redis key holding the cache.
func (p *RedisPersister) Key() string {
	return p.keyPrefix + redisEntriesKey
}

// Load fetches the cache. A missing key is an empty cache.
func (p *RedisPersister) Load(ctx context.Context) (map[string]Entry, error) {
	val, err := p.client.Get(ctx, p.Key()).Result()
	if errors.Is(err, redis.Nil) {
		return make(map[string]Entry), nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "read cache from redis"), "key", p.Key())
	}

	entries, err := decodeEntries([]byte(val))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "decode cache from redis"), "key", p.Key())
	}
	return entries, nil
}

// Save overwrites the cache value. Entries carry their own timestamps, so the
// key is stored without a Redis TTL.
func (p *RedisPersister) Save(ctx context.Context, entries map[string]Entry) error {
	data, err := encodeEntries(entries)
	if err != nil {
		return zerr.Wrap(err, "encode cache")
	}

	if err := p.client.Set(ctx, p.Key(), string(data), 0).Err(); err != nil {
		return zerr.With(zerr.Wrap(err, "write cache to redis"), "key", p.Key())
	}
	return nil
}

// Close closes the Redis connection.
func (p *RedisPersister) Close() error {
	return p.client.Close()
}

// Ping tests the Redis connection.
func (p *RedisPersister) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Verify RedisPersister implements Persister
var _ Persister = (*RedisPersister)(nil)
