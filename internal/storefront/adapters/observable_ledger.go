package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/tdsbot/internal/database"
	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/ports"
	"github.com/dejobratic/tdsbot/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableLedger struct {
	ledger  ports.OrderLedger
	metrics *database.Metrics
}

func NewObservableLedger(ledger ports.OrderLedger, metrics *database.Metrics) *ObservableLedger {
	return &ObservableLedger{
		ledger:  ledger,
		metrics: metrics,
	}
}

func (l *ObservableLedger) Record(ctx context.Context, order domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderLedger.Record",
		attribute.String("order.id", order.ID),
		attribute.String("order.product_key", order.ProductKey),
		attribute.String("db.operation", "record_order"),
	)
	defer span.End()

	start := time.Now()
	err := l.ledger.Record(ctx, order)
	l.metrics.RecordQuery(ctx, "record_order", time.Since(start).Seconds(), err)

	return telemetry.EndSpan(span, err)
}
