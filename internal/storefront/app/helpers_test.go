package app_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/adapters/memory"
	"github.com/dejobratic/tdsbot/internal/storefront/app"
	"github.com/dejobratic/tdsbot/internal/storefront/catalog"
	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/intent"
	"github.com/dejobratic/tdsbot/internal/storefront/notify"
	"github.com/dejobratic/tdsbot/internal/storefront/pricing"
)

var (
	// Monday 2024-06-03 12:00 in Kolkata.
	monday = time.Date(2024, 6, 3, 6, 30, 0, 0, time.UTC)
	// Sunday 2024-06-02 12:00 in Kolkata.
	sunday = time.Date(2024, 6, 2, 6, 30, 0, 0, time.UTC)
)

type mockEventBus struct {
	mu                       sync.Mutex
	started                  []domain.Session
	canceled                 []domain.Session
	placed                   []domain.Order
	publishOrderPlacedFn     func(ctx context.Context, order domain.Order) error
	publishPurchaseStartedFn func(ctx context.Context, session domain.Session) error
}

func (m *mockEventBus) PublishPurchaseStarted(ctx context.Context, session domain.Session) error {
	m.mu.Lock()
	m.started = append(m.started, session)
	m.mu.Unlock()
	if m.publishPurchaseStartedFn != nil {
		return m.publishPurchaseStartedFn(ctx, session)
	}
	return nil
}

func (m *mockEventBus) PublishPurchaseCanceled(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canceled = append(m.canceled, session)
	return nil
}

func (m *mockEventBus) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	m.placed = append(m.placed, order)
	m.mu.Unlock()
	if m.publishOrderPlacedFn != nil {
		return m.publishOrderPlacedFn(ctx, order)
	}
	return nil
}

type mockLedger struct {
	recordFn func(ctx context.Context, order domain.Order) error
	recorded []domain.Order
}

func (m *mockLedger) Record(ctx context.Context, order domain.Order) error {
	m.recorded = append(m.recorded, order)
	if m.recordFn != nil {
		return m.recordFn(ctx, order)
	}
	return nil
}

type mockResponder struct {
	respondFn func(ctx context.Context, userID, text string) (string, error)
}

func (m *mockResponder) Respond(ctx context.Context, userID, text string) (string, error) {
	return m.respondFn(ctx, userID, text)
}

type fixture struct {
	now      time.Time
	sessions *memory.SessionStore
	events   *mockEventBus
	ledger   *mockLedger
	flow     *app.PurchaseFlow
	conv     *app.Conversation
}

func (f *fixture) setNow(now time.Time) { f.now = now }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newFixture(t *testing.T, now time.Time, opts ...app.ConversationOption) *fixture {
	t.Helper()

	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() failed: %v", err)
	}
	return newFixtureWithCatalog(t, c, now, opts...)
}

func newFixtureWithCatalog(t *testing.T, c *catalog.Catalog, now time.Time, opts ...app.ConversationOption) *fixture {
	t.Helper()

	engine := pricing.Default()

	f := &fixture{
		now:      now,
		sessions: memory.NewSessionStore(0),
		events:   &mockEventBus{},
		ledger:   &mockLedger{},
	}

	var seq int
	logger := discardLogger()
	f.flow = app.NewPurchaseFlow(c, engine, f.sessions, f.events, logger,
		app.WithClock(func() time.Time { return f.now }),
		app.WithOrderIDs(func(time.Time) string {
			seq++
			return fmt.Sprintf("TDS%08d", seq)
		}),
		app.WithLedger(f.ledger),
	)

	resolver := intent.NewResolver(c, engine, intent.Settings{
		StoreName:     "TDS",
		SupportURL:    "https://wa.me/919024487624",
		PaymentHandle: "arshs@ptyes",
	})
	dispatcher := notify.NewDispatcher(notify.Config{
		StoreName:     "TDS",
		SupportNumber: "919024487624",
		Location:      engine.Location(),
	})
	f.conv = app.NewConversation(f.flow, resolver, dispatcher, app.Settings{
		StoreName:     "TDS",
		SupportNumber: "919024487624",
		PaymentHandle: "arshs@ptyes",
		AdminChatID:   "admin-1",
	}, logger, opts...)

	return f
}

func photo(id string) *domain.MediaRef {
	return &domain.MediaRef{ID: id, Kind: "photo"}
}
