// Package memory is an in-process KV store used for development and tests.
package memory

import (
	"context"
	"f2fit/gym-manager/internal/repository"
	"sort"
	"sync"
)

// Store implements repository.KVStore over a map guarded by a mutex.
type Store struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Update holds the lock across fn, so it never conflicts.
func (s *Store) Update(_ context.Context, key string, fn repository.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.data[key]
	next, err := fn(append([]byte(nil), current...), exists)
	if err != nil {
		return err
	}
	s.data[key] = append([]byte(nil), next...)
	return nil
}

// Keys lists the stored keys in order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
