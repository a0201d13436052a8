package memory

import (
	"context"
	"strings"
	"sync"

	"reveille/internal/storage"
)

// MemoryStorage implements storage.KV in process memory
type MemoryStorage struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

// New creates an empty in-memory store
func New() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

// Get returns the value for key
func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, storage.ErrClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// SetMany writes all pairs under a single lock
func (m *MemoryStorage) SetMany(ctx context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storage.ErrClosed
	}
	for k, v := range values {
		m.data[k] = v
	}
	return nil
}

// Delete removes keys
func (m *MemoryStorage) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storage.ErrClosed
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Scan returns a copy of every pair under prefix
func (m *MemoryStorage) Scan(ctx context.Context, prefix string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, storage.ErrClosed
	}
	out := make(map[string]string)
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

// Close marks the store closed
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

var _ storage.KV = (*MemoryStorage)(nil)
