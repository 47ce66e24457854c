package kv

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Store backed by a map. It is the default when no
// database is configured, and the fixture of choice in tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
	*notifier
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[string]string),
		notifier: newNotifier(),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()

	m.publish(Event{Key: key, Value: value})
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	_, existed := m.entries[key]
	delete(m.entries, key)
	m.mu.Unlock()

	if existed {
		m.publish(Event{Key: key, Deleted: true})
	}
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string)
	for k, v := range m.entries {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

func (m *Memory) Subscribe() (<-chan Event, func()) {
	return m.subscribe()
}
