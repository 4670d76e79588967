package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/metrics"
	"github.com/dejobratic/tdsbot/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableConversation struct {
	handler EventHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableConversation(handler EventHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableConversation {
	return &ObservableConversation{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableConversation) Handle(ctx context.Context, event domain.Event) (responses []domain.Response) {
	ctx, span := telemetry.StartSpan(ctx, "Conversation.Handle")
	defer span.End()

	start := time.Now()
	success := true
	defer func() {
		if r := recover(); r != nil {
			success = false
			o.logger.ErrorContext(ctx, "panic while handling event",
				"panic", r,
				"event_id", event.ID,
				"user_id", event.UserID,
			)
			responses = []domain.Response{{Recipient: event.UserID, Text: failureResponse.Text}}
		}
		o.metrics.RecordEvent(ctx, string(event.Kind), time.Since(start).Seconds(), success)
	}()

	telemetry.AddSpanAttributes(span,
		attribute.String("event.id", event.ID),
		attribute.String("event.kind", string(event.Kind)),
		attribute.String("event.user_id", event.UserID),
	)

	o.logger.DebugContext(ctx, "handling event",
		"event_id", event.ID,
		"kind", event.Kind,
		"user_id", event.UserID,
	)

	responses = o.handler.Handle(ctx, event)

	telemetry.AddSpanAttributes(span, attribute.Int("event.responses", len(responses)))
	telemetry.SetSpanSuccess(span)

	return responses
}
