// Package pagecache implements incremental static regeneration for page
// props: a fresh entry is served as is, a stale one is served while it is
// regenerated in the background, and a miss is generated on the spot.
package pagecache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrMiss is returned by a Store that holds nothing for a key.
var ErrMiss = errors.New("pagecache: miss")

// Entry is a generated page's props and when they were generated.
type Entry struct {
	Props       json.RawMessage `json:"props"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Store persists entries. Entries are never expired for staleness by the
// store itself; the Cache decides freshness from GeneratedAt.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, e *Entry) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps entries in process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return &e, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = *e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
