package kvstore

import (
	"context"
	"sync"

	"github.com/shelfwatch/backend/internal/domain"
)

// Memory is a thread-safe in-memory key-value store
type Memory struct {
	data  map[string]string
	mutex sync.RWMutex
}

// NewMemory creates a new in-memory key-value store
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]string),
	}
}

// Get retrieves the value for a key
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, exists := m.data[key]
	if !exists {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

// Set stores a value under a key
func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data[key] = value
	return nil
}

// Remove deletes a key. Removing an absent key is not an error.
func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.data, key)
	return nil
}

// Keys returns all stored keys in no particular order
func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	return keys, nil
}

// Size returns the current number of stored keys (for debugging/monitoring)
func (m *Memory) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}
