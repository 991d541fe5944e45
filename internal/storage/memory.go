package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Storage
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory creates an empty in-memory storage
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}
