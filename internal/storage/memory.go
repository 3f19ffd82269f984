package storage

import (
	"context"
	"sync"
)

// Memory is an in-process key/value store. Contents are lost on exit.
type Memory struct {
	mu     sync.RWMutex
	items  map[string]string
	writes int
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

// GetItem returns the value stored under key
func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem stores or replaces the value under key
func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	m.writes++
	return nil
}

// Writes returns how many SetItem calls have succeeded
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
