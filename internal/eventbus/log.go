package eventbus

import (
	"context"
	"log/slog"
)

// LogPublisher writes envelopes to the log instead of a broker. It is the
// default sink for single-instance deployments.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, envelope Envelope) error {
	p.logger.InfoContext(ctx, "event::"+envelope.Topic,
		"event_id", envelope.ID,
		"occurred_at", envelope.OccurredAt,
		"payload", string(envelope.Payload),
	)
	return nil
}
