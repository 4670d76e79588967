package ports

import (
	"context"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
)

// EventBus defines the contract for publishing purchase lifecycle events.
type EventBus interface {
	PublishPurchaseStarted(ctx context.Context, session domain.Session) error
	PublishPurchaseCanceled(ctx context.Context, session domain.Session) error
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
}

// OrderLedger keeps a write-only audit trail of accepted orders.
type OrderLedger interface {
	Record(ctx context.Context, order domain.Order) error
}

// Responder produces a free-form reply for text no rule recognised.
type Responder interface {
	Respond(ctx context.Context, userID, text string) (string, error)
}
