// Package storage provides the two key-value scopes the application persists
// through: a best-effort cache scope and a durable property scope. Both are
// injected explicitly so tests can swap in the in-memory implementations.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable wraps backend failures so callers can classify them
// without depending on driver error types.
var ErrStoreUnavailable = errors.New("store unavailable")

// CacheStore is the short-lived scope. Entries may expire or be evicted at
// any time; callers must tolerate missing values.
type CacheStore interface {
	// Get returns the stored value, or "" with a nil error when the key is
	// absent or already evicted.
	Get(ctx context.Context, key string) (string, error)
	// Put stores value under key; a positive ttl bounds its lifetime.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Remove deletes the key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// PropertyStore is the durable scope. Values persist until explicitly
// overwritten; Set is atomic per key.
type PropertyStore interface {
	// Get returns the stored value, or "" with a nil error when absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
