package orchestration

import (
	"sync"
)

// Store holds active sessions keyed by id. The engine is the only writer for
// any given session; the store itself must tolerate concurrent sessions.
type Store interface {
	Get(id string) (*Session, bool)
	Put(session *Session)
	Delete(id string)
	// Claim atomically transitions a session from one status to another.
	// The returned session is nil when the id is unknown; claimed reports
	// whether the transition was applied. At most one caller can claim a
	// given transition, which is what keeps a session single-writer.
	Claim(id string, from, to Status) (session *Session, claimed bool)
}

// InMemoryStore is the default session store. Sessions do not survive a
// process restart.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryStore creates an empty in-memory session store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Get looks up a session by id
func (s *InMemoryStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Put stores or replaces a session
func (s *InMemoryStore) Put(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

// Delete removes a session from the store
func (s *InMemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Claim moves a session from one status to another under the store lock
func (s *InMemoryStore) Claim(id string, from, to Status) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if session.Status != from {
		return session, false
	}
	session.Status = to
	return session, true
}

// Len reports how many sessions are active
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
