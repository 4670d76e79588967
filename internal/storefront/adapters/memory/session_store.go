package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/ports"
)

type entry struct {
	session   domain.Session
	expiresAt time.Time
}

// SessionStore keeps sessions in process memory. It is the single-instance backend.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore constructs a store. A zero ttl keeps sessions until they are deleted.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create stores the session, replacing any prior session for the user.
func (s *SessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = s.entryFor(session)
	return nil
}

// Get fetches the user's session.
func (s *SessionStore) Get(_ context.Context, userID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.lookup(userID)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	copy := e.session
	return &copy, nil
}

// Update applies mutate under the write lock.
func (s *SessionStore) Update(_ context.Context, userID string, mutate func(*domain.Session) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(userID)
	if !ok {
		delete(s.sessions, userID)
		return nil, ports.ErrSessionNotFound
	}

	updated := e.session
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	s.sessions[userID] = s.entryFor(updated)

	copy := updated
	return &copy, nil
}

// Take applies mutate and removes the session under the write lock.
func (s *SessionStore) Take(_ context.Context, userID string, mutate func(*domain.Session) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(userID)
	if !ok {
		delete(s.sessions, userID)
		return nil, ports.ErrSessionNotFound
	}

	taken := e.session
	if err := mutate(&taken); err != nil {
		return nil, err
	}
	delete(s.sessions, userID)
	return &taken, nil
}

// Delete removes the user's session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *SessionStore) entryFor(session domain.Session) entry {
	e := entry{session: session}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return e
}

func (s *SessionStore) lookup(userID string) (entry, bool) {
	e, ok := s.sessions[userID]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		return entry{}, false
	}
	return e, true
}
