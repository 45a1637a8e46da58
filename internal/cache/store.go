// Package cache memoizes compilation artifacts by checksum, in memory and
// on disk.
package cache

import (
	"sync"

	"quill/internal/checksum"
)

// Store maps checksums to values. Reads vastly outnumber writes, so lookups
// take the read lock and only a miss takes the write lock.
type Store[V any] struct {
	mu    sync.RWMutex
	items map[checksum.Digest]V
}

// NewStore returns an empty store.
func NewStore[V any]() *Store[V] {
	return &Store[V]{items: make(map[checksum.Digest]V)}
}

// Get returns the value stored under key.
func (s *Store[V]) Get(key checksum.Digest) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Put stores v under key, replacing any previous value.
func (s *Store[V]) Put(key checksum.Digest, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = v
}

// GetOrAdd returns the value under key, creating it with create on a miss.
// When two callers miss at once, the first value stored wins and both get it.
func (s *Store[V]) GetOrAdd(key checksum.Digest, create func() V) V {
	if v, ok := s.Get(key); ok {
		return v
	}
	v := create()
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.items[key]; ok {
		return existing
	}
	s.items[key] = v
	return v
}

// Len is the number of stored values.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
