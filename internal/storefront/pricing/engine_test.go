package pricing_test

import (
	"testing"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/pricing"
	"github.com/shopspring/decimal"
)

func testProduct() domain.Product {
	return domain.Product{
		Key:           "netflix",
		Name:          "Netflix Premium",
		NormalPrice:   domain.Price{Label: "₹120/month", Amount: decimal.NewFromInt(120)},
		DiscountPrice: domain.Price{Label: "₹96/month", Amount: decimal.NewFromInt(96)},
		PaymentHandle: "store@upi",
	}
}

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestQuoteFollowsLocalCalendarDay(t *testing.T) {
	engine := pricing.Default()
	product := testProduct()
	loc := kolkata(t)

	// 2024-06-02 is a Sunday. Sample every three hours across a full week plus both
	// sides of every local midnight.
	start := time.Date(2024, 5, 27, 0, 0, 0, 0, loc)
	for i := 0; i < 7*8; i++ {
		instant := start.Add(time.Duration(i) * 3 * time.Hour)
		for _, at := range []time.Time{instant, instant.Add(-time.Second)} {
			quote := engine.Quote(product, at)
			wantDiscount := at.In(loc).Weekday() == time.Sunday
			if quote.Discounted != wantDiscount {
				t.Fatalf("%v (local %v): discounted=%v, want %v", at.UTC(), at.In(loc), quote.Discounted, wantDiscount)
			}
			wantAmount := product.NormalPrice.Amount
			if wantDiscount {
				wantAmount = product.DiscountPrice.Amount
			}
			if !quote.Amount.Equal(wantAmount) {
				t.Fatalf("%v: amount %s, want %s", at, quote.Amount, wantAmount)
			}
		}
	}
}

func TestQuoteUsesZoneNotUTC(t *testing.T) {
	engine := pricing.Default()
	product := testProduct()

	tests := []struct {
		name         string
		at           time.Time
		wantDiscount bool
	}{
		// 18:29:59 UTC Saturday is 23:59:59 Saturday in Kolkata.
		{"just before local midnight", time.Date(2024, 6, 1, 18, 29, 59, 0, time.UTC), false},
		// 18:30 UTC Saturday is 00:00 Sunday in Kolkata.
		{"local midnight opens the window", time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC), true},
		// 20:00 UTC Sunday is already Monday 01:30 in Kolkata.
		{"utc sunday evening is local monday", time.Date(2024, 6, 2, 20, 0, 0, 0, time.UTC), false},
		{"last second of local sunday", time.Date(2024, 6, 2, 18, 29, 59, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := engine.Quote(product, tt.at)
			if q.Discounted != tt.wantDiscount {
				t.Errorf("Quote(%v).Discounted = %v, want %v", tt.at, q.Discounted, tt.wantDiscount)
			}
		})
	}
}

func TestDiscountQuote(t *testing.T) {
	q := pricing.Default().DiscountQuote(testProduct())
	if !q.Discounted || !q.Amount.Equal(decimal.NewFromInt(96)) || q.Label != "₹96/month" {
		t.Errorf("unexpected forced quote %+v", q)
	}
}

func TestNextDiscountWindowStart(t *testing.T) {
	engine := pricing.Default()
	loc := kolkata(t)
	nextSunday := time.Date(2024, 6, 9, 0, 0, 0, 0, loc)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"from monday", time.Date(2024, 6, 3, 12, 0, 0, 0, loc), nextSunday},
		{"from saturday late", time.Date(2024, 6, 8, 23, 59, 59, 0, loc), nextSunday},
		{"inside the window skips a week", time.Date(2024, 6, 2, 10, 0, 0, 0, loc), nextSunday},
		{"at the window start skips a week", time.Date(2024, 6, 2, 0, 0, 0, 0, loc), nextSunday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.NextDiscountWindowStart(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("NextDiscountWindowStart(%v) = %v, want %v", tt.now, got, tt.want)
			}
			if !got.After(tt.now) {
				t.Errorf("window start %v is not after %v", got, tt.now)
			}
		})
	}
}

func TestUntilNextWindowAndDays(t *testing.T) {
	engine := pricing.Default()
	loc := kolkata(t)

	now := time.Date(2024, 6, 7, 12, 0, 0, 0, loc) // Friday noon
	if got := engine.UntilNextWindow(now); got != 36*time.Hour {
		t.Errorf("UntilNextWindow = %v, want 36h", got)
	}
	if got := engine.DaysUntilDiscountDay(now); got != 2 {
		t.Errorf("DaysUntilDiscountDay = %d, want 2", got)
	}
	if got := engine.DaysUntilDiscountDay(time.Date(2024, 6, 2, 9, 0, 0, 0, loc)); got != 0 {
		t.Errorf("DaysUntilDiscountDay on sunday = %d, want 0", got)
	}
}

func TestNewEngineRejectsUnknownZone(t *testing.T) {
	if _, err := pricing.NewEngine("Mars/Olympus", time.Sunday); err == nil {
		t.Error("expected error for unknown zone")
	}
}
