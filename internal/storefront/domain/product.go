package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price pairs the human-readable label shown to users with the amount charged.
type Price struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Product is an immutable catalog entry.
type Product struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	NormalPrice   Price    `json:"normal_price"`
	DiscountPrice Price    `json:"discount_price"`
	DiscountLabel string   `json:"discount_label"`
	Description   string   `json:"description"`
	Features      []string `json:"features"`
	PaymentHandle string   `json:"payment_handle"`
	Rationale     string   `json:"rationale"`
}

// Validate ensures the product can be priced and sold.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Key) == "" {
		return errors.New("product key is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %s: name is required", p.Key)
	}
	if !p.NormalPrice.Amount.IsPositive() {
		return fmt.Errorf("product %s: normal amount must be positive", p.Key)
	}
	if !p.DiscountPrice.Amount.IsPositive() {
		return fmt.Errorf("product %s: discount amount must be positive", p.Key)
	}
	if p.DiscountPrice.Amount.GreaterThan(p.NormalPrice.Amount) {
		return fmt.Errorf("product %s: discount amount %s exceeds normal amount %s",
			p.Key, p.DiscountPrice.Amount, p.NormalPrice.Amount)
	}
	if strings.TrimSpace(p.PaymentHandle) == "" {
		return fmt.Errorf("product %s: payment handle is required", p.Key)
	}
	return nil
}

// Savings is the difference between the normal and the discounted amount.
func (p Product) Savings() decimal.Decimal {
	return p.NormalPrice.Amount.Sub(p.DiscountPrice.Amount)
}

// Quote is a price tier frozen at a point in time.
type Quote struct {
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	Discounted bool            `json:"discounted"`
}
