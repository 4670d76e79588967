package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/metrics"
	"github.com/dejobratic/tdsbot/internal/storefront/ports"
	"github.com/dejobratic/tdsbot/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ObservableSessionStore traces and times every session store call.
type ObservableSessionStore struct {
	store   ports.SessionStore
	metrics *metrics.Metrics
}

func NewObservableSessionStore(store ports.SessionStore, metrics *metrics.Metrics) *ObservableSessionStore {
	return &ObservableSessionStore{
		store:   store,
		metrics: metrics,
	}
}

func (s *ObservableSessionStore) Create(ctx context.Context, session domain.Session) error {
	ctx, span := telemetry.StartSpan(ctx, "SessionStore.Create",
		attribute.String("session.user_id", session.UserID),
		attribute.String("session.product_key", session.ProductKey),
		attribute.Bool("session.discounted", session.Quote.Discounted),
	)
	defer span.End()

	start := time.Now()
	err := s.store.Create(ctx, session)
	s.metrics.RecordSessionStoreOperation(ctx, "create", time.Since(start).Seconds())

	return telemetry.EndSpan(span, err)
}

func (s *ObservableSessionStore) Get(ctx context.Context, userID string) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "SessionStore.Get", attribute.String("session.user_id", userID))
	defer span.End()

	start := time.Now()
	session, err := s.store.Get(ctx, userID)
	s.metrics.RecordSessionStoreOperation(ctx, "get", time.Since(start).Seconds())

	return endWithState(span, session, err)
}

func (s *ObservableSessionStore) Update(ctx context.Context, userID string, mutate func(*domain.Session) error) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "SessionStore.Update", attribute.String("session.user_id", userID))
	defer span.End()

	start := time.Now()
	session, err := s.store.Update(ctx, userID, mutate)
	s.metrics.RecordSessionStoreOperation(ctx, "update", time.Since(start).Seconds())

	return endWithState(span, session, err)
}

func (s *ObservableSessionStore) Take(ctx context.Context, userID string, mutate func(*domain.Session) error) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "SessionStore.Take", attribute.String("session.user_id", userID))
	defer span.End()

	start := time.Now()
	session, err := s.store.Take(ctx, userID, mutate)
	s.metrics.RecordSessionStoreOperation(ctx, "take", time.Since(start).Seconds())

	return endWithState(span, session, err)
}

func (s *ObservableSessionStore) Delete(ctx context.Context, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "SessionStore.Delete", attribute.String("session.user_id", userID))
	defer span.End()

	start := time.Now()
	err := s.store.Delete(ctx, userID)
	s.metrics.RecordSessionStoreOperation(ctx, "delete", time.Since(start).Seconds())

	return telemetry.EndSpan(span, err)
}

func endWithState(span trace.Span, session *domain.Session, err error) (*domain.Session, error) {
	if err != nil {
		return nil, telemetry.EndSpan(span, err)
	}
	telemetry.AddSpanAttributes(span, attribute.String("session.state", string(session.State)))
	return session, telemetry.EndSpan(span, nil)
}
