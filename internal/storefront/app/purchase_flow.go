package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/catalog"
	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/metrics"
	"github.com/dejobratic/tdsbot/internal/storefront/ports"
	"github.com/dejobratic/tdsbot/internal/storefront/pricing"
)

// OrderIDPrefix starts every generated order id.
const OrderIDPrefix = "TDS"

// TimestampOrderID derives an order id from the last eight digits of the
// millisecond timestamp. Two proofs in the same millisecond collide.
func TimestampOrderID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return OrderIDPrefix + ms
}

// FlowOption customises a PurchaseFlow.
type FlowOption func(*PurchaseFlow)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) FlowOption {
	return func(f *PurchaseFlow) { f.now = now }
}

// WithOrderIDs replaces TimestampOrderID.
func WithOrderIDs(gen func(time.Time) string) FlowOption {
	return func(f *PurchaseFlow) { f.newOrderID = gen }
}

// WithLedger records every accepted order.
func WithLedger(ledger ports.OrderLedger) FlowOption {
	return func(f *PurchaseFlow) { f.ledger = ledger }
}

// WithFlowMetrics counts opened sessions and placed orders.
func WithFlowMetrics(m *metrics.Metrics) FlowOption {
	return func(f *PurchaseFlow) { f.metrics = m }
}

// PurchaseFlow drives a user through
// awaiting_payment -> awaiting_proof -> closed, one session per user.
type PurchaseFlow struct {
	catalog    *catalog.Catalog
	pricing    *pricing.Engine
	sessions   ports.SessionStore
	events     ports.EventBus
	ledger     ports.OrderLedger
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	newOrderID func(time.Time) string
}

// NewPurchaseFlow wires required dependencies.
func NewPurchaseFlow(
	c *catalog.Catalog,
	p *pricing.Engine,
	sessions ports.SessionStore,
	events ports.EventBus,
	logger *slog.Logger,
	opts ...FlowOption,
) *PurchaseFlow {
	f := &PurchaseFlow{
		catalog:    c,
		pricing:    p,
		sessions:   sessions,
		events:     events,
		logger:     logger,
		now:        time.Now,
		newOrderID: TimestampOrderID,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Select opens a session for the product with the quote frozen at selection
// time, replacing any session the user already had.
func (f *PurchaseFlow) Select(ctx context.Context, userID, productKey string, forceDiscount bool) (domain.Session, domain.Product, error) {
	product, err := f.catalog.Get(productKey)
	if err != nil {
		return domain.Session{}, domain.Product{}, err
	}

	now := f.now()
	quote := f.pricing.Quote(product, now)
	if forceDiscount {
		quote = f.pricing.DiscountQuote(product)
	}

	session := domain.NewSession(userID, product.Key, quote, now)
	if err := f.sessions.Create(ctx, session); err != nil {
		return domain.Session{}, domain.Product{}, fmt.Errorf("create session: %w", err)
	}

	if f.metrics != nil {
		f.metrics.RecordSessionStarted(ctx, product.Key, quote.Discounted)
	}
	if err := f.events.PublishPurchaseStarted(ctx, session); err != nil {
		f.logger.WarnContext(ctx, "failed to publish purchase started", "error", err, "user_id", userID)
	}

	return session, product, nil
}

// RequestUpload moves the session from awaiting_payment to awaiting_proof.
func (f *PurchaseFlow) RequestUpload(ctx context.Context, userID string) (domain.Session, error) {
	session, err := f.sessions.Update(ctx, userID, func(s *domain.Session) error {
		return s.Advance(domain.StateAwaitingProof, f.now())
	})
	if err != nil {
		return domain.Session{}, noActiveSession(err)
	}
	return *session, nil
}

// SubmitProof closes an awaiting_proof session, removes it and emits the order.
// Any other state yields ErrNoActiveSession and changes nothing.
func (f *PurchaseFlow) SubmitProof(ctx context.Context, proof domain.PaymentProof) (domain.Order, error) {
	if err := proof.Validate(); err != nil {
		return domain.Order{}, err
	}

	now := f.now()
	session, err := f.sessions.Take(ctx, proof.UserID, func(s *domain.Session) error {
		return s.Advance(domain.StateClosed, now)
	})
	if err != nil {
		return domain.Order{}, noActiveSession(err)
	}

	product, err := f.catalog.Get(session.ProductKey)
	if err != nil {
		return domain.Order{}, err
	}

	submittedAt := proof.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = now
	}

	order := domain.Order{
		ID:            f.newOrderID(now),
		UserID:        proof.UserID,
		Handle:        proof.Handle,
		ProductKey:    product.Key,
		ProductName:   product.Name,
		Amount:        session.Quote.Amount,
		PriceLabel:    session.Quote.Label,
		Discounted:    session.Quote.Discounted,
		PaymentHandle: product.PaymentHandle,
		ProofMediaID:  proof.Media.ID,
		SubmittedAt:   submittedAt,
	}
	if err := order.Validate(); err != nil {
		return domain.Order{}, err
	}

	if f.metrics != nil {
		f.metrics.RecordOrderPlaced(ctx, order.ProductKey)
	}
	if f.ledger != nil {
		if err := f.ledger.Record(ctx, order); err != nil {
			f.logger.ErrorContext(ctx, "failed to record order", "error", err, "order_id", order.ID)
		}
	}
	if err := f.events.PublishOrderPlaced(ctx, order); err != nil {
		f.logger.WarnContext(ctx, "failed to publish order placed", "error", err, "order_id", order.ID)
	}

	return order, nil
}

// Cancel discards the user's session. It reports whether one existed.
func (f *PurchaseFlow) Cancel(ctx context.Context, userID string) (bool, error) {
	session, err := f.sessions.Get(ctx, userID)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := f.sessions.Delete(ctx, userID); err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	if err := f.events.PublishPurchaseCanceled(ctx, *session); err != nil {
		f.logger.WarnContext(ctx, "failed to publish purchase canceled", "error", err, "user_id", userID)
	}
	return true, nil
}

// Inspect returns the user's session, or a session in StateNone when there is none.
func (f *PurchaseFlow) Inspect(ctx context.Context, userID string) (domain.Session, error) {
	session, err := f.sessions.Get(ctx, userID)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return domain.Session{UserID: userID, State: domain.StateNone}, nil
	}
	if err != nil {
		return domain.Session{}, err
	}
	return *session, nil
}

func noActiveSession(err error) error {
	if errors.Is(err, ports.ErrSessionNotFound) {
		return fmt.Errorf("%w: %v", domain.ErrNoActiveSession, err)
	}
	return err
}
