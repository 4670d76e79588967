// Package pricing decides which price tier applies at a given instant.
package pricing

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
)

const (
	// DefaultZone is the zone whose calendar day decides the tier.
	DefaultZone = "Asia/Kolkata"
	// DefaultDiscountDay is the weekday that carries discounted prices.
	DefaultDiscountDay = time.Sunday
)

// Engine applies a weekly single-day discount window evaluated in a fixed zone.
type Engine struct {
	loc *time.Location
	day time.Weekday
}

// NewEngine builds an engine for the given zone and discount weekday.
func NewEngine(zone string, day time.Weekday) (*Engine, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", zone, err)
	}
	return &Engine{loc: loc, day: day}, nil
}

// Default returns the Sunday discount engine for Asia/Kolkata.
func Default() *Engine {
	e, err := NewEngine(DefaultZone, DefaultDiscountDay)
	if err != nil {
		panic(err)
	}
	return e
}

// Location is the zone prices are evaluated in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// DiscountDay is the weekday carrying discounted prices.
func (e *Engine) DiscountDay() time.Weekday {
	return e.day
}

// IsDiscountDay reports whether now falls on the discount weekday in the engine's zone.
func (e *Engine) IsDiscountDay(now time.Time) bool {
	return now.In(e.loc).Weekday() == e.day
}

// Quote returns the tier applicable to the product at now.
func (e *Engine) Quote(p domain.Product, now time.Time) domain.Quote {
	if e.IsDiscountDay(now) {
		return e.DiscountQuote(p)
	}
	return domain.Quote{
		Label:  p.NormalPrice.Label,
		Amount: p.NormalPrice.Amount,
	}
}

// DiscountQuote returns the discounted tier regardless of the day.
func (e *Engine) DiscountQuote(p domain.Product) domain.Quote {
	return domain.Quote{
		Label:      p.DiscountPrice.Label,
		Amount:     p.DiscountPrice.Amount,
		Discounted: true,
	}
}

// NextDiscountWindowStart returns local midnight of the next discount day strictly
// after now. Inside the window the answer is the start of next week's window.
func (e *Engine) NextDiscountWindowStart(now time.Time) time.Time {
	local := now.In(e.loc)
	days := (int(e.day) - int(local.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return time.Date(local.Year(), local.Month(), local.Day()+days, 0, 0, 0, 0, e.loc)
}

// UntilNextWindow is the time left before the next discount window opens.
func (e *Engine) UntilNextWindow(now time.Time) time.Duration {
	return e.NextDiscountWindowStart(now).Sub(now)
}

// DaysUntilDiscountDay counts calendar days from today to the discount day, zero on the day itself.
func (e *Engine) DaysUntilDiscountDay(now time.Time) int {
	return (int(e.day) - int(now.In(e.loc).Weekday()) + 7) % 7
}
