package kvstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key does not exist or has expired.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrUnavailable wraps transport failures of the underlying backend.
	ErrUnavailable = errors.New("kvstore: backend unavailable")

	// ErrInvalidTTL is returned when a write is requested without a positive TTL.
	ErrInvalidTTL = errors.New("kvstore: ttl must be positive")
)

// Store is a shared TTL key-value store.
type Store interface {
	// Get returns the value stored at key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set overwrites key with value and resets its TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Del removes the given keys and reports how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)
	// Exists reports how many of the given keys exist.
	Exists(ctx context.Context, keys ...string) (int64, error)
	// TTL returns the remaining lifetime of key, zero when it does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)
	// IncrWithExpiry increments key by one and returns the post-increment value.
	// The TTL is applied only when the increment created the key.
	IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Ping checks connectivity with the backend.
	Ping(ctx context.Context) error
}
