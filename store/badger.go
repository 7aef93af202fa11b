// ABOUTME: Badger-backed implementation of the local Store
// ABOUTME: Thread-safe wrapper around a badger DB holding JSON collection values
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v3"
)

// BadgerStore persists collections in a badger database on local disk.
type BadgerStore struct {
	db *badger.DB
	mu sync.RWMutex
}

// OpenBadger opens (or creates) a badger store at dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying badger database.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Get unmarshals the value stored under key into out.
func (s *BadgerStore) Get(key string, out any) (bool, error) {
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
func (s *BadgerStore) GetRaw(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return raw, true, nil
}

// Set marshals value and stores it under key.
func (s *BadgerStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %q: %w", key, err)
	}
	return s.SetRaw(key, raw)
}

// SetRaw stores pre-encoded JSON bytes under key.
func (s *BadgerStore) SetRaw(key string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Remove deletes key from the store.
func (s *BadgerStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}
