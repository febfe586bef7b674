// Package redisstore provides a go-redis-backed implementation of
// httpcache.MetadataStore and httpcache.BlobStore.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arnavsurve/httpcache"
)

// Config holds the configuration for creating a Redis-backed store.
type Config struct {
	// Address is the Redis server address (e.g., "localhost:6379").
	// Required field.
	Address string

	// Password is the Redis password for authentication. Optional.
	Password string

	// DB is the Redis database number to use. Optional, defaults to 0.
	DB int

	// PoolSize is the maximum number of socket connections. Optional,
	// defaults to go-redis's own default.
	PoolSize int

	// DialTimeout is the timeout for establishing new connections.
	// Optional, defaults to 5 seconds.
	DialTimeout time.Duration

	// TTL is applied to every Set call, so stale entries are reclaimed by
	// Redis even if the engine never issues an explicit Delete. Optional;
	// zero means no expiration.
	TTL time.Duration

	// KeyPrefix namespaces keys to avoid collision with other data
	// stored in the same Redis instance. Defaults to "httpcache:".
	KeyPrefix string
}

// Store is a MetadataStore/BlobStore backed by a Redis client.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// New creates a Store and verifies connectivity with a PING.
func New(config Config) (*Store, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("redisstore: address is required")
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = 5 * time.Second
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "httpcache:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:        config.Address,
		Password:    config.Password,
		DB:          config.DB,
		PoolSize:    config.PoolSize,
		DialTimeout: config.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: failed to connect to redis: %w", err)
	}

	return &Store{client: client, ttl: config.TTL, prefix: config.KeyPrefix}, nil
}

// NewWithClient wraps an already-constructed go-redis client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl, prefix: "httpcache:"}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redisstore: get failed for key %q: %w", key, err)
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: set failed for key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redisstore: delete failed for key %q: %w", key, err)
	}
	return nil
}

var (
	_ httpcache.MetadataStore = (*Store)(nil)
	_ httpcache.BlobStore     = (*Store)(nil)
)
