package session

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in a mutex-guarded map. Losing it on
// restart just forces new sessions, which is accepted behavior.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Context
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]*Context)}
}

func (s *MemoryStore) Create(userID string) (*Context, error) {
	c := NewContext(userID)
	s.mu.Lock()
	s.sessions[c.SessionID] = c.Clone()
	s.mu.Unlock()
	return c, nil
}

// Get returns a copy of the context, or ErrNotFound when the session is
// unknown or has expired. Expired entries are purged on read.
func (s *MemoryStore) Get(sessionID uuid.UUID) (*Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if c.Expired() {
		delete(s.sessions, sessionID)
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

// Update writes the context back. Overlapping turns on the same session
// are last-write-wins at turn granularity.
func (s *MemoryStore) Update(c *Context) error {
	s.mu.Lock()
	s.sessions[c.SessionID] = c.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(sessionID uuid.UUID) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// CleanupExpired removes expired sessions and returns how many were
// purged. Idempotent and safe to call on any schedule or never.
func (s *MemoryStore) CleanupExpired() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for id, c := range s.sessions {
		if c.Expired() {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged, nil
}
