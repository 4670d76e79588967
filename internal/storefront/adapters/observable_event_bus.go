package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/tdsbot/internal/eventbus"
	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/ports"
	"github.com/dejobratic/tdsbot/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableEventBus traces each publish and records its latency per topic.
type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *eventbus.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *eventbus.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishPurchaseStarted(ctx context.Context, session domain.Session) error {
	return e.observe(ctx, "EventBus.PublishPurchaseStarted", eventbus.TopicPurchaseStarted,
		[]attribute.KeyValue{
			attribute.String("session.user_id", session.UserID),
			attribute.String("session.product_key", session.ProductKey),
		},
		func(ctx context.Context) error { return e.bus.PublishPurchaseStarted(ctx, session) },
	)
}

func (e *ObservableEventBus) PublishPurchaseCanceled(ctx context.Context, session domain.Session) error {
	return e.observe(ctx, "EventBus.PublishPurchaseCanceled", eventbus.TopicPurchaseCanceled,
		[]attribute.KeyValue{
			attribute.String("session.user_id", session.UserID),
			attribute.String("session.state", string(session.State)),
		},
		func(ctx context.Context) error { return e.bus.PublishPurchaseCanceled(ctx, session) },
	)
}

func (e *ObservableEventBus) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	return e.observe(ctx, "EventBus.PublishOrderPlaced", eventbus.TopicOrderPlaced,
		[]attribute.KeyValue{
			attribute.String("order.id", order.ID),
			attribute.String("order.product_key", order.ProductKey),
		},
		func(ctx context.Context) error { return e.bus.PublishOrderPlaced(ctx, order) },
	)
}

func (e *ObservableEventBus) observe(ctx context.Context, name, topic string, attrs []attribute.KeyValue, publish func(context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, name, append(attrs, attribute.String("topic", topic))...)
	defer span.End()

	start := time.Now()
	err := publish(ctx)
	e.metrics.RecordPublish(ctx, topic, time.Since(start).Seconds(), err == nil)

	return telemetry.EndSpan(span, err)
}
