package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Ledger is the write-only audit trail of accepted orders.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Record inserts the order. Re-recording an id is a no-op.
func (l *Ledger) Record(ctx context.Context, order domain.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, handle, product_key, product_name, amount, price_label,
			discounted, payment_handle, proof_media_id, submitted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := l.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.Handle,
		order.ProductKey,
		order.ProductName,
		order.Amount.String(),
		order.PriceLabel,
		order.Discounted,
		order.PaymentHandle,
		order.ProofMediaID,
		order.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// Summary aggregates recorded orders since a point in time.
type Summary struct {
	Orders  int64
	Revenue decimal.Decimal
}

// Summarize totals the orders submitted at or after since.
func (l *Ledger) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)::TEXT
		FROM orders
		WHERE submitted_at >= $1
	`

	var (
		summary Summary
		revenue string
	)
	if err := l.pool.QueryRow(ctx, query, since).Scan(&summary.Orders, &revenue); err != nil {
		return Summary{}, fmt.Errorf("summarize orders: %w", err)
	}

	amount, err := decimal.NewFromString(revenue)
	if err != nil {
		return Summary{}, fmt.Errorf("parse revenue %q: %w", revenue, err)
	}
	summary.Revenue = amount

	return summary, nil
}
