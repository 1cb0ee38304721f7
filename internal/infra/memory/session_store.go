package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore,
// used in tests and when no persistence backend is configured.
type SessionStore struct {
	mu    sync.RWMutex
	saved domain.Session
	ok    bool
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Load(_ context.Context) (domain.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ok {
		return domain.Session{}, false, nil
	}
	return s.saved.Clone(), true, nil
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = session.Clone()
	s.ok = true
	return nil
}

func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = domain.Session{}
	s.ok = false
	return nil
}
