// ABOUTME: In-memory Store used by tests and ephemeral (no data dir) mode
// ABOUTME: Map-backed, safe for concurrent use
package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps collections in a process-local map.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get unmarshals the value stored under key into out.
func (s *MemoryStore) Get(key string, out any) (bool, error) {
	raw, found, err := s.GetRaw(key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode value for %q: %w", key, err)
	}
	return true, nil
}

// GetRaw returns the stored JSON bytes for key.
func (s *MemoryStore) GetRaw(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return cp, true, nil
}

// Set marshals value and stores it under key.
func (s *MemoryStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %q: %w", key, err)
	}
	return s.SetRaw(key, raw)
}

// SetRaw stores pre-encoded JSON bytes under key.
func (s *MemoryStore) SetRaw(key string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(raw))
	copy(cp, raw)
	s.values[key] = cp
	return nil
}

// Remove deletes key from the store.
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
