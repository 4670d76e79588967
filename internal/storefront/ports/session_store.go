package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
)

// SessionStore holds at most one purchase session per user id.
type SessionStore interface {
	// Create stores the session, replacing any prior session for the same user.
	Create(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, userID string) (*domain.Session, error)
	// Update applies mutate to the stored session atomically. If mutate returns
	// an error nothing is written and the error is returned unchanged.
	Update(ctx context.Context, userID string, mutate func(*domain.Session) error) (*domain.Session, error)
	// Take applies mutate and removes the session in one atomic step, returning
	// the mutated session. If mutate returns an error the session is kept as is.
	Take(ctx context.Context, userID string, mutate func(*domain.Session) error) (*domain.Session, error)
	Delete(ctx context.Context, userID string) error
}

var (
	// ErrSessionNotFound is returned when the user has no session.
	ErrSessionNotFound = errors.New("session not found")
)
