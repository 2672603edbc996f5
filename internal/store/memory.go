package store

import (
	"context"
	"maps"
	"sync"
	"time"
)

type memoryEntry struct {
	values    map[string]string
	expiresAt time.Time
}

// MemoryStore implements SessionStore in process memory. Sessions do not
// survive a restart; use it for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	nowFunc  func() time.Time
}

// MemoryOption configures the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryNowFunc overrides the time function for testing.
func WithMemoryNowFunc(f func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.nowFunc = f
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]memoryEntry),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load implements SessionStore.
func (s *MemoryStore) Load(_ context.Context, id string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || !s.nowFunc().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	return maps.Clone(e.values), nil
}

// Save implements SessionStore.
func (s *MemoryStore) Save(
	_ context.Context,
	id string,
	values map[string]string,
	ttl time.Duration,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = memoryEntry{
		values:    maps.Clone(values),
		expiresAt: s.nowFunc().Add(ttl),
	}
	return nil
}

// Delete implements SessionStore.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// PurgeExpired implements SessionStore.
func (s *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	var n int64
	for id, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Ping implements SessionStore.
func (*MemoryStore) Ping(context.Context) error {
	return nil
}

// Close implements SessionStore.
func (*MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
