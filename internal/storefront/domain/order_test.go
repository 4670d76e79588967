package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/shopspring/decimal"
)

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name    string
		order   domain.Order
		wantErr bool
	}{
		{
			name: "valid order",
			order: domain.Order{
				ID:          "TDS12345678",
				UserID:      "42",
				ProductKey:  "netflix",
				ProductName: "Netflix Premium",
				Amount:      decimal.NewFromInt(120),
				SubmittedAt: time.Now(),
			},
			wantErr: false,
		},
		{
			name: "missing id",
			order: domain.Order{
				UserID:     "42",
				ProductKey: "netflix",
				Amount:     decimal.NewFromInt(120),
			},
			wantErr: true,
		},
		{
			name: "whitespace only user",
			order: domain.Order{
				ID:         "TDS12345678",
				UserID:     "   ",
				ProductKey: "netflix",
				Amount:     decimal.NewFromInt(120),
			},
			wantErr: true,
		},
		{
			name: "missing product",
			order: domain.Order{
				ID:     "TDS12345678",
				UserID: "42",
				Amount: decimal.NewFromInt(120),
			},
			wantErr: true,
		},
		{
			name: "zero amount",
			order: domain.Order{
				ID:         "TDS12345678",
				UserID:     "42",
				ProductKey: "netflix",
				Amount:     decimal.Zero,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Order.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaymentProofValidate(t *testing.T) {
	valid := domain.PaymentProof{UserID: "42", Media: domain.MediaRef{ID: "file-1", Kind: "photo"}}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid proof, got %v", err)
	}

	missingMedia := domain.PaymentProof{UserID: "42"}
	if err := missingMedia.Validate(); err == nil {
		t.Error("expected error for proof without media")
	}
}

func TestProductValidate(t *testing.T) {
	base := func() domain.Product {
		return domain.Product{
			Key:           "netflix",
			Name:          "Netflix Premium",
			NormalPrice:   domain.Price{Label: "₹120/month", Amount: decimal.NewFromInt(120)},
			DiscountPrice: domain.Price{Label: "₹96/month", Amount: decimal.NewFromInt(96)},
			PaymentHandle: "store@upi",
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *domain.Product)
		wantErr bool
	}{
		{"valid product", func(p *domain.Product) {}, false},
		{"discount equal to normal", func(p *domain.Product) { p.DiscountPrice.Amount = decimal.NewFromInt(120) }, false},
		{"discount above normal", func(p *domain.Product) { p.DiscountPrice.Amount = decimal.NewFromInt(121) }, true},
		{"missing key", func(p *domain.Product) { p.Key = "" }, true},
		{"missing payment handle", func(p *domain.Product) { p.PaymentHandle = " " }, true},
		{"zero discount amount", func(p *domain.Product) { p.DiscountPrice.Amount = decimal.Zero }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Product.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if got := base().Savings(); !got.Equal(decimal.NewFromInt(24)) {
		t.Errorf("expected savings 24, got %s", got)
	}
}

func TestSessionAdvance(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		from    domain.SessionState
		to      domain.SessionState
		wantErr bool
	}{
		{"payment to proof", domain.StateAwaitingPayment, domain.StateAwaitingProof, false},
		{"proof to closed", domain.StateAwaitingProof, domain.StateClosed, false},
		{"payment to closed skips proof", domain.StateAwaitingPayment, domain.StateClosed, true},
		{"proof back to payment", domain.StateAwaitingProof, domain.StateAwaitingPayment, true},
		{"closed is terminal", domain.StateClosed, domain.StateAwaitingProof, true},
		{"none cannot advance", domain.StateNone, domain.StateAwaitingProof, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.Session{UserID: "42", State: tt.from}
			err := s.Advance(tt.to, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Advance() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, domain.ErrNoActiveSession) {
					t.Errorf("expected ErrNoActiveSession, got %v", err)
				}
				if s.State != tt.from {
					t.Errorf("state changed on rejected transition: %s", s.State)
				}
				return
			}
			if s.State != tt.to || !s.UpdatedAt.Equal(now) {
				t.Errorf("expected state %s at %v, got %s at %v", tt.to, now, s.State, s.UpdatedAt)
			}
		})
	}
}

func TestActionValidate(t *testing.T) {
	tests := []struct {
		name    string
		action  domain.Action
		wantErr bool
	}{
		{"buy with product", domain.BuyAction("netflix", false), false},
		{"forced discount buy", domain.BuyAction("netflix", true), false},
		{"buy without product", domain.Action{Kind: domain.ActionBuy}, true},
		{"discount offer without product", domain.Action{Kind: domain.ActionDiscountOffer}, true},
		{"upload now", domain.Action{Kind: domain.ActionUploadNow}, false},
		{"forced discount on non-buy", domain.Action{Kind: domain.ActionViewProducts, ForceDiscount: true}, true},
		{"unknown kind", domain.Action{Kind: "refund"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.action.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Action.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
