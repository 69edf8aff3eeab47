package port

import (
	"context"
	"time"
)

// Cache is the minimal key-value contract the application consumes.
// Implementations must be concurrency-safe and context-aware.
type Cache interface {
	// Get fetches the value for key; misses return ("", ErrMiss).
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. Zero or negative TTL means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// SetNX stores value only if the key does not exist yet and reports
	// whether the write happened. This is the single-use primitive the
	// channel authorization gate relies on.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)

	// Del removes one or more keys and returns the number removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way so callers can tell misses
// apart from transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
