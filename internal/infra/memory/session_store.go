package memory

import (
	"sync"
	"time"

	"quizo-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.SessionHandle
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.SessionHandle),
	}
}

func (s *SessionStore) Put(h *app.SessionHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[h.ID()] = h
}

func (s *SessionStore) Get(id string) (*app.SessionHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.sessions[id]
	return h, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) Idle(cutoff time.Time) []*app.SessionHandle {
	s.mu.RLock()
	handles := make([]*app.SessionHandle, 0, len(s.sessions))
	for _, h := range s.sessions {
		handles = append(handles, h)
	}
	s.mu.RUnlock()

	// handle locks are taken outside the map lock; Answer holds a handle lock
	// while deleting from the map.
	var idle []*app.SessionHandle
	for _, h := range handles {
		if h.LastTouched().Before(cutoff) {
			idle = append(idle, h)
		}
	}
	return idle
}

// Len reports how many sessions are held.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
