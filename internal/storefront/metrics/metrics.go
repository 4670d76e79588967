package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	eventsTotal          metric.Int64Counter
	eventDuration        metric.Float64Histogram
	intentsTotal         metric.Int64Counter
	sessionsStartedTotal metric.Int64Counter
	ordersPlacedTotal    metric.Int64Counter
	sessionStoreDuration metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.eventsTotal, err = meter.Int64Counter(
		"storefront_events_total",
		metric.WithDescription("Total number of inbound chat events handled"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create storefront_events_total counter: %w", err)
	}

	m.eventDuration, err = meter.Float64Histogram(
		"storefront_event_duration_seconds",
		metric.WithDescription("Duration of inbound chat event handling"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create storefront_event_duration histogram: %w", err)
	}

	m.intentsTotal, err = meter.Int64Counter(
		"storefront_intents_total",
		metric.WithDescription("Total number of resolved free-text intents"),
		metric.WithUnit("{intent}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create storefront_intents_total counter: %w", err)
	}

	m.sessionsStartedTotal, err = meter.Int64Counter(
		"storefront_sessions_started_total",
		metric.WithDescription("Total number of purchase sessions opened"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create storefront_sessions_started_total counter: %w", err)
	}

	m.ordersPlacedTotal, err = meter.Int64Counter(
		"storefront_orders_placed_total",
		metric.WithDescription("Total number of orders emitted after proof submission"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create storefront_orders_placed_total counter: %w", err)
	}

	m.sessionStoreDuration, err = meter.Float64Histogram(
		"session_store_operation_duration_seconds",
		metric.WithDescription("Duration of session store operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create session_store_operation_duration histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordEvent(ctx context.Context, kind string, durationSeconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.eventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
	m.eventDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

func (m *Metrics) RecordIntent(ctx context.Context, intent string) {
	m.intentsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intent", intent),
	))
}

func (m *Metrics) RecordSessionStarted(ctx context.Context, productKey string, discounted bool) {
	m.sessionsStartedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("product", productKey),
		attribute.Bool("discounted", discounted),
	))
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context, productKey string) {
	m.ordersPlacedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("product", productKey),
	))
}

func (m *Metrics) RecordSessionStoreOperation(ctx context.Context, operation string, durationSeconds float64) {
	m.sessionStoreDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}
