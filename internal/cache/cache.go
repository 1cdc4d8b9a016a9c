// Package cache provides the TTL key-value store shared by the weather
// pipeline: raw provider responses and assembled enrichment results
// both go through it. Writes are idempotent upserts, safe for
// concurrent use across track workers.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a TTL key-value store.
type Cache interface {
	// Get returns the stored value and whether the key was present
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores the value with the given TTL, replacing any prior value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key if present.
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache used when no redis address is
// configured. Expired entries are dropped lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
