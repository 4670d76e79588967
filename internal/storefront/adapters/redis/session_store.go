package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/ports"
	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "tdsbot:session:"
	maxUpdateRetries = 5
)

// ErrUpdateConflict is returned when an update keeps losing the optimistic race.
var ErrUpdateConflict = errors.New("session update conflict")

// SessionStore keeps sessions in Redis so several bot instances can share
// them. Updates are compare-and-swap via WATCH/MULTI.
type SessionStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewSessionStore builds a store. A zero ttl keeps sessions until deleted.
func NewSessionStore(client goredis.UniversalClient, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

// Create stores the session, replacing any prior session for the user.
func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Get fetches the user's session.
func (s *SessionStore) Get(ctx context.Context, userID string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ports.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(data)
}

// Update watches the key, applies mutate and writes back in a transaction,
// retrying when another writer touched the key in between.
func (s *SessionStore) Update(ctx context.Context, userID string, mutate func(*domain.Session) error) (*domain.Session, error) {
	return s.compareAndSwap(ctx, userID, mutate, false)
}

// Take is Update with the write replaced by DEL, so the mutated session never
// lands in Redis.
func (s *SessionStore) Take(ctx context.Context, userID string, mutate func(*domain.Session) error) (*domain.Session, error) {
	return s.compareAndSwap(ctx, userID, mutate, true)
}

func (s *SessionStore) compareAndSwap(ctx context.Context, userID string, mutate func(*domain.Session) error, remove bool) (*domain.Session, error) {
	key := sessionKey(userID)

	var updated *domain.Session
	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return ports.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		session, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := mutate(session); err != nil {
			return err
		}

		var encoded []byte
		if !remove {
			if encoded, err = json.Marshal(session); err != nil {
				return fmt.Errorf("marshal session: %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			if remove {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = session
		return nil
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUpdateConflict, userID)
}

// Delete removes the user's session.
func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func decodeSession(data []byte) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}
