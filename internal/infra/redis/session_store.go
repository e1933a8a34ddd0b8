package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"quizo-service/internal/app"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Sessions hold live locks and shuffle state, so they stay in a local map.
//   - Redis marks session liveness (quiz:session:{id} -> owner email) so other
//     instances and operators can see who is mid-quiz.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.SessionHandle
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.SessionHandle),
	}
}

func (s *SessionStore) Put(h *app.SessionHandle) {
	s.mu.Lock()
	s.sessions[h.ID()] = h
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(h.ID()), h.Owner().Email, s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*app.SessionHandle, bool) {
	s.mu.RLock()
	h, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(id), s.ttl).Err()
	}
	return h, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *SessionStore) Idle(cutoff time.Time) []*app.SessionHandle {
	s.mu.RLock()
	handles := make([]*app.SessionHandle, 0, len(s.sessions))
	for _, h := range s.sessions {
		handles = append(handles, h)
	}
	s.mu.RUnlock()

	idle := handles[:0]
	for _, h := range handles {
		if h.LastTouched().Before(cutoff) {
			idle = append(idle, h)
		}
	}
	return idle
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
