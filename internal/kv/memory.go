package kv

import "sync"

// MemoryStore keeps values in process memory. A maxBytes of 0 disables the
// quota.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	used     int64
	maxBytes int64
}

func NewMemoryStore(maxBytes int64) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		maxBytes: maxBytes,
	}
}

func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.used + int64(len(value))
	if old, ok := m.data[key]; ok {
		next -= int64(len(old))
	}
	if m.maxBytes > 0 && next > m.maxBytes {
		return ErrCapacityExceeded
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	m.used = next
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.data[key]; ok {
		m.used -= int64(len(old))
		delete(m.data, key)
	}
	return nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	return keys, nil
}

func (m *MemoryStore) Close() error { return nil }
