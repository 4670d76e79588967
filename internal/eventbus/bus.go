// Package eventbus publishes purchase lifecycle events as JSON envelopes.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/google/uuid"
)

const (
	TopicPurchaseStarted  = "purchase.started"
	TopicPurchaseCanceled = "purchase.canceled"
	TopicOrderPlaced      = "order.placed"
)

// Envelope wraps one event payload.
type Envelope struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher delivers envelopes to a sink.
type Publisher interface {
	Publish(ctx context.Context, envelope Envelope) error
}

// Bus turns storefront events into envelopes for a Publisher.
type Bus struct {
	publisher Publisher
	now       func() time.Time
}

// New returns a bus publishing through p.
func New(p Publisher) *Bus {
	return &Bus{publisher: p, now: time.Now}
}

func (b *Bus) PublishPurchaseStarted(ctx context.Context, session domain.Session) error {
	return b.publish(ctx, TopicPurchaseStarted, session)
}

func (b *Bus) PublishPurchaseCanceled(ctx context.Context, session domain.Session) error {
	return b.publish(ctx, TopicPurchaseCanceled, session)
}

func (b *Bus) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	return b.publish(ctx, TopicOrderPlaced, order)
}

func (b *Bus) publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	envelope := Envelope{
		ID:         uuid.NewString(),
		Topic:      topic,
		OccurredAt: b.now().UTC(),
		Payload:    data,
	}
	if err := b.publisher.Publish(ctx, envelope); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
