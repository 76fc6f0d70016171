package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	RedisBackend  = "redis"
	MemoryBackend = "memory"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Cache is a small generic key/value store with per-key expiry.
type Cache[V any] interface {
	// Get returns the value or ErrCacheMiss.
	Get(ctx context.Context, key string) (V, error)
	// Set stores value under key. Zero ttl = no expiration.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	// Delete removes the key.
	Delete(ctx context.Context, key string) error
	// Close releases background goroutines or connections.
	Close() error
}

// NewCache builds the configured backend. opts is only read for redis.
func NewCache[V any](backend string, opts *RedisOptions) (Cache[V], error) {
	switch backend {
	case RedisBackend:
		if opts == nil {
			return nil, errors.New("cache: redis backend requires options")
		}
		return NewRedisCache[V](opts), nil
	case MemoryBackend, "":
		return NewMemoryCache[V](), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", backend)
	}
}
