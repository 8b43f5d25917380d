package storage

import (
	"sync"
)

// Memory is a KV held in process memory
type Memory struct {
	values map[string][]byte
	quota  int64
	size   int64
	mu     sync.RWMutex
}

// NewMemory returns an empty store. A quota of zero means unlimited.
func NewMemory(quota int64) *Memory {
	return &Memory{
		values: make(map[string][]byte),
		quota:  quota,
	}
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.values[key]
	if !exists {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	previous := int64(len(m.values[key]))
	if err := checkQuota(m.quota, m.size, previous, len(value)); err != nil {
		return err
	}
	m.values[key] = append([]byte(nil), value...)
	m.size += int64(len(value)) - previous
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size -= int64(len(m.values[key]))
	delete(m.values, key)
	return nil
}
