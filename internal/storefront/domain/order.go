package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MediaRef points at an uploaded file held by the transport.
type MediaRef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// PaymentProof is the media a user submits to assert payment.
type PaymentProof struct {
	UserID      string
	Handle      string
	Media       MediaRef
	SubmittedAt time.Time
}

// Validate ensures the proof references a submitter and a media file.
func (p PaymentProof) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(p.Media.ID) == "" {
		return errors.New("media id is required")
	}
	return nil
}

// Order is emitted once when a proof of payment is accepted.
// It is never looked up again by the storefront.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Handle        string          `json:"handle,omitempty"`
	ProductKey    string          `json:"product_key"`
	ProductName   string          `json:"product_name"`
	Amount        decimal.Decimal `json:"amount"`
	PriceLabel    string          `json:"price_label"`
	Discounted    bool            `json:"discounted"`
	PaymentHandle string          `json:"payment_handle"`
	ProofMediaID  string          `json:"proof_media_id"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("order id is required")
	}
	if strings.TrimSpace(o.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(o.ProductKey) == "" {
		return errors.New("product_key is required")
	}
	if !o.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	return nil
}
