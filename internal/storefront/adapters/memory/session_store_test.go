package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/ports"
	"github.com/shopspring/decimal"
)

func newSession(userID, productKey string) domain.Session {
	quote := domain.Quote{Label: "₹120/month", Amount: decimal.NewFromInt(120)}
	return domain.NewSession(userID, productKey, quote, time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC))
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create replaces prior session", func(t *testing.T) {
		store := NewSessionStore(0)
		_ = store.Create(ctx, newSession("42", "netflix"))
		_ = store.Create(ctx, newSession("42", "youtube"))

		got, err := store.Get(ctx, "42")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got.ProductKey != "youtube" || got.State != domain.StateAwaitingPayment {
			t.Errorf("expected youtube awaiting payment, got %+v", got)
		}
		if len(store.sessions) != 1 {
			t.Errorf("expected exactly one session, got %d", len(store.sessions))
		}
	})

	t.Run("missing session", func(t *testing.T) {
		store := NewSessionStore(0)
		if _, err := store.Get(ctx, "nobody"); !errors.Is(err, ports.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
		_, err := store.Update(ctx, "nobody", func(*domain.Session) error { return nil })
		if !errors.Is(err, ports.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound from Update, got %v", err)
		}
	})

	t.Run("update applies mutation", func(t *testing.T) {
		store := NewSessionStore(0)
		_ = store.Create(ctx, newSession("42", "netflix"))

		updated, err := store.Update(ctx, "42", func(s *domain.Session) error {
			return s.Advance(domain.StateAwaitingProof, time.Now())
		})
		if err != nil {
			t.Fatalf("Update() failed: %v", err)
		}
		if updated.State != domain.StateAwaitingProof {
			t.Errorf("expected awaiting proof, got %s", updated.State)
		}

		got, _ := store.Get(ctx, "42")
		if got.State != domain.StateAwaitingProof {
			t.Errorf("stored state not updated: %s", got.State)
		}
	})

	t.Run("failed mutation writes nothing", func(t *testing.T) {
		store := NewSessionStore(0)
		_ = store.Create(ctx, newSession("42", "netflix"))

		boom := errors.New("boom")
		_, err := store.Update(ctx, "42", func(s *domain.Session) error {
			s.ProductKey = "mutated"
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected mutate error, got %v", err)
		}

		got, _ := store.Get(ctx, "42")
		if got.ProductKey != "netflix" {
			t.Errorf("failed mutation leaked into store: %s", got.ProductKey)
		}
	})

	t.Run("get returns a copy", func(t *testing.T) {
		store := NewSessionStore(0)
		_ = store.Create(ctx, newSession("42", "netflix"))

		got, _ := store.Get(ctx, "42")
		got.State = domain.StateClosed

		again, _ := store.Get(ctx, "42")
		if again.State != domain.StateAwaitingPayment {
			t.Errorf("mutating the returned session changed the store")
		}
	})

	t.Run("sessions expire after ttl", func(t *testing.T) {
		now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
		store := NewSessionStore(time.Hour)
		store.now = func() time.Time { return now }

		_ = store.Create(ctx, newSession("42", "netflix"))

		now = now.Add(59 * time.Minute)
		if _, err := store.Get(ctx, "42"); err != nil {
			t.Fatalf("session expired early: %v", err)
		}

		now = now.Add(time.Minute)
		if _, err := store.Get(ctx, "42"); !errors.Is(err, ports.ErrSessionNotFound) {
			t.Errorf("expected expired session to be gone, got %v", err)
		}
	})

	t.Run("take removes only after a successful mutation", func(t *testing.T) {
		store := NewSessionStore(0)
		_ = store.Create(ctx, newSession("42", "netflix"))

		if _, err := store.Take(ctx, "42", func(s *domain.Session) error {
			return s.Advance(domain.StateClosed, time.Now())
		}); !errors.Is(err, domain.ErrNoActiveSession) {
			t.Fatalf("expected ErrNoActiveSession closing from awaiting payment, got %v", err)
		}
		if got, err := store.Get(ctx, "42"); err != nil || got.State != domain.StateAwaitingPayment {
			t.Fatalf("rejected take must keep the session, got %+v, %v", got, err)
		}

		_, _ = store.Update(ctx, "42", func(s *domain.Session) error {
			return s.Advance(domain.StateAwaitingProof, time.Now())
		})
		taken, err := store.Take(ctx, "42", func(s *domain.Session) error {
			return s.Advance(domain.StateClosed, time.Now())
		})
		if err != nil {
			t.Fatalf("Take() failed: %v", err)
		}
		if taken.State != domain.StateClosed || taken.ProductKey != "netflix" {
			t.Errorf("unexpected taken session %+v", taken)
		}
		if _, err := store.Get(ctx, "42"); !errors.Is(err, ports.ErrSessionNotFound) {
			t.Errorf("expected session to be gone after Take, got %v", err)
		}
		if _, err := store.Take(ctx, "42", func(*domain.Session) error { return nil }); !errors.Is(err, ports.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound on second Take, got %v", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := NewSessionStore(0)
		_ = store.Create(ctx, newSession("42", "netflix"))
		if err := store.Delete(ctx, "42"); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if err := store.Delete(ctx, "42"); err != nil {
			t.Errorf("second Delete() failed: %v", err)
		}
	})

	t.Run("concurrent updates advance once", func(t *testing.T) {
		store := NewSessionStore(0)
		_ = store.Create(ctx, newSession("42", "netflix"))

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Update(ctx, "42", func(s *domain.Session) error {
					return s.Advance(domain.StateAwaitingProof, time.Now())
				})
				if err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if successes != 1 {
			t.Errorf("expected exactly one successful advance, got %d", successes)
		}
	})
}

func TestDeduplicator(t *testing.T) {
	ctx := context.Background()

	t.Run("first delivery wins", func(t *testing.T) {
		d := NewDeduplicator(10)
		first, _ := d.MarkProcessed(ctx, "update-1")
		second, _ := d.MarkProcessed(ctx, "update-1")
		if !first || second {
			t.Errorf("expected true then false, got %v then %v", first, second)
		}
	})

	t.Run("oldest keys are evicted at capacity", func(t *testing.T) {
		d := NewDeduplicator(2)
		_, _ = d.MarkProcessed(ctx, "a")
		_, _ = d.MarkProcessed(ctx, "b")
		_, _ = d.MarkProcessed(ctx, "c")

		if fresh, _ := d.MarkProcessed(ctx, "a"); !fresh {
			t.Error("expected evicted key to be processed again")
		}
		if fresh, _ := d.MarkProcessed(ctx, "c"); fresh {
			t.Error("expected recent key to be remembered")
		}
	})
}
