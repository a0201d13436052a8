package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close
var ErrClosed = errors.New("storage closed")

// KV defines the raw string key/value persistence the alarm store is built on.
// Implementations must apply SetMany atomically.
type KV interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany writes all pairs in one transaction
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes the given keys; missing keys are ignored
	Delete(ctx context.Context, keys ...string) error
	// Scan returns every pair whose key starts with prefix
	Scan(ctx context.Context, prefix string) (map[string]string, error)

	// Lifecycle
	Close() error
}
