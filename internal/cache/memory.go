package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps entries in a process-local map
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Entry)}
}

// Load returns the entry for key
func (m *MemoryBackend) Load(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	return e, ok, nil
}

// Save replaces the entry for key
func (m *MemoryBackend) Save(_ context.Context, entry Entry, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.Key] = entry
	return nil
}

// Prune drops entries that expired before the given instant
func (m *MemoryBackend) Prune(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, e := range m.entries {
		if !e.ExpiresAt.After(before) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
