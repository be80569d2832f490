// Package kv abstracts the local durable key-value store that mirrors the
// in-memory collections between runs. Implementations are swappable via
// configuration without touching the core.
package kv

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound indicates the key has never been written.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store persists opaque values under string keys with no expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// MemoryStore keeps values in process memory. It backs tests and the
// degraded mode entered when the durable store is unavailable.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(value))
	copy(out, value)
	s.values[key] = out
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
