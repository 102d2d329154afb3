// Package memory holds in-process dialog sessions.
package memory

import (
	"sync"
	"time"

	"reminderbot/internal/domain"

	"github.com/jonboulle/clockwork"
)

// SessionStore implements repository.SessionRepository.
// A session idle for longer than ttl is treated as absent. A zero ttl disables expiry.
type SessionStore struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu       sync.RWMutex
	sessions map[int64]domain.DialogSession
}

// NewSessionStore creates an empty session store
func NewSessionStore(clock clockwork.Clock, ttl time.Duration) *SessionStore {
	return &SessionStore{
		clock:    clock,
		ttl:      ttl,
		sessions: make(map[int64]domain.DialogSession),
	}
}

// Get returns a copy of the user's session
func (s *SessionStore) Get(userID int64) (*domain.DialogSession, bool) {
	s.mu.RLock()
	session, ok := s.sessions[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if s.expired(session) {
		s.Delete(userID)
		return nil, false
	}
	return &session, true
}

// Set stores the session and refreshes its idle timer
func (s *SessionStore) Set(userID int64, session *domain.DialogSession) {
	stored := *session
	stored.UpdatedAt = s.clock.Now()

	s.mu.Lock()
	s.sessions[userID] = stored
	s.mu.Unlock()
}

// Delete drops the user's session
func (s *SessionStore) Delete(userID int64) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

// Sweep removes expired sessions and returns how many were dropped
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, userID)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(session domain.DialogSession) bool {
	return s.ttl > 0 && s.clock.Since(session.UpdatedAt) > s.ttl
}
