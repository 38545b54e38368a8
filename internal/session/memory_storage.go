package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStorage keeps sessions in process memory. Entries idle longer than the TTL are
// treated as missing.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	updated  map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStorage builds an empty in-memory store.
func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &MemoryStorage{
		sessions: make(map[string][]byte),
		updated:  make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a copy of the stored session.
func (s *MemoryStorage) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	data, ok := s.sessions[id]
	savedAt := s.updated[id]
	s.mu.RUnlock()

	if !ok || s.now().Sub(savedAt) > s.ttl {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save stores a snapshot of the session.
func (s *MemoryStorage) Save(_ context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = data
	s.updated[sess.ID] = s.now()
	s.mu.Unlock()

	return nil
}

// Delete removes the session.
func (s *MemoryStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	delete(s.updated, id)
	s.mu.Unlock()

	return nil
}

// List returns every live session.
func (s *MemoryStorage) List(ctx context.Context) ([]*Session, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	result := make([]*Session, 0, len(ids))
	for _, id := range ids {
		sess, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		result = append(result, sess)
	}
	return result, nil
}
