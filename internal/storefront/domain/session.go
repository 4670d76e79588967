package domain

import (
	"fmt"
	"time"
)

// SessionState captures where a user is in the purchase funnel.
type SessionState string

const (
	StateNone            SessionState = "none"
	StateAwaitingPayment SessionState = "awaiting_payment"
	StateAwaitingProof   SessionState = "awaiting_proof"
	StateClosed          SessionState = "closed"
)

// Session is the volatile record of one user's in-progress purchase.
type Session struct {
	UserID     string       `json:"user_id"`
	ProductKey string       `json:"product_key"`
	Quote      Quote        `json:"quote"`
	State      SessionState `json:"state"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewSession opens a session awaiting payment with the quote locked in.
func NewSession(userID, productKey string, quote Quote, now time.Time) Session {
	return Session{
		UserID:     userID,
		ProductKey: productKey,
		Quote:      quote,
		State:      StateAwaitingPayment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CanAdvance reports whether the session may move to the given state.
func (s Session) CanAdvance(to SessionState) bool {
	switch s.State {
	case StateAwaitingPayment:
		return to == StateAwaitingProof
	case StateAwaitingProof:
		return to == StateClosed
	default:
		return false
	}
}

// Advance moves the session forward, rejecting any step outside
// awaiting_payment -> awaiting_proof -> closed.
func (s *Session) Advance(to SessionState, at time.Time) error {
	if !s.CanAdvance(to) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrNoActiveSession, s.State, to)
	}
	s.State = to
	s.UpdatedAt = at
	return nil
}
