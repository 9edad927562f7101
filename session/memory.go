package session

import (
	"context"
	"sync"
)

// Memory is a process-local Storage.
type Memory struct {
	mu     sync.RWMutex
	values map[Key]string
}

// NewMemory returns an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{values: make(map[Key]string)}
}

func (m *Memory) Get(_ context.Context, key Key) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *Memory) Put(_ context.Context, entries map[Key]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		if v == "" {
			delete(m.values, k)
			continue
		}
		m.values[k] = v
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Len reports how many keys are currently set.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
