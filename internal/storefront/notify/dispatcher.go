// Package notify formats the messages sent once an order is accepted. It does
// no I/O; delivery belongs to the transport.
package notify

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
)

const rule = "━━━━━━━━━━━━━━━━"

// Config holds the store facts printed on receipts and alerts.
type Config struct {
	StoreName string
	// SupportNumber is the international number without "+" used for wa.me links.
	SupportNumber string
	// Location is the zone receipt timestamps are rendered in.
	Location *time.Location
}

// Dispatcher formats user receipts, confirmations and operator alerts.
type Dispatcher struct {
	cfg Config
}

// NewDispatcher builds a dispatcher. A nil location falls back to UTC.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Dispatcher{cfg: cfg}
}

// SupportLink is the chat link for the support number.
func (d *Dispatcher) SupportLink() string {
	return "https://wa.me/" + d.cfg.SupportNumber
}

// ActivationMessage is the human-readable activation request for an order.
func (d *Dispatcher) ActivationMessage(order domain.Order) string {
	return fmt.Sprintf("Hello! I have purchased %s (₹%s) from %s Telegram Bot. Order ID: %s. Payment completed via UPI. Please activate my subscription.",
		order.ProductName, order.Amount.String(), d.cfg.StoreName, order.ID)
}

// ActivationLink returns a wa.me deep link to destination carrying the
// percent-encoded activation message.
func (d *Dispatcher) ActivationLink(order domain.Order, destination string) string {
	text := strings.ReplaceAll(url.QueryEscape(d.ActivationMessage(order)), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", destination, text)
}

// FormatConfirmation is the message shown to the buyer right after the proof is accepted.
func (d *Dispatcher) FormatConfirmation(order domain.Order) string {
	var b strings.Builder
	b.WriteString("🎉 *Payment Received!*\n\n")
	b.WriteString("📋 *Order Confirmed:*\n")
	fmt.Fprintf(&b, "• Order ID: %s\n", order.ID)
	fmt.Fprintf(&b, "• Product: %s\n", EscapeMarkdown(order.ProductName))
	fmt.Fprintf(&b, "• Amount Paid: ₹%s\n", order.Amount.String())
	b.WriteString("• Payment Method: UPI\n")
	b.WriteString("• Status: ✅ Approved\n\n")
	b.WriteString("⏱️ *What's Next:*\n")
	b.WriteString("1. Click WhatsApp button below\n")
	b.WriteString("2. Send pre-filled message\n")
	b.WriteString("3. We'll activate within 15-30 minutes\n")
	b.WriteString("4. You'll receive credentials\n\n")
	b.WriteString("🛡️ *Warranty:* 7-day replacement guarantee\n")
	b.WriteString("📞 *Support:* 24/7 on WhatsApp\n\n")
	fmt.Fprintf(&b, "*Thank you for choosing %s!* 😊", EscapeMarkdown(d.cfg.StoreName))
	return b.String()
}

// FormatReceipt is the buyer's receipt, timestamped in the configured zone.
func (d *Dispatcher) FormatReceipt(order domain.Order) string {
	at := order.SubmittedAt.In(d.cfg.Location)

	var b strings.Builder
	fmt.Fprintf(&b, "🧾 *Order Receipt - %s*\n", EscapeMarkdown(d.cfg.StoreName))
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "📅 Date: %s\n", at.Format("02/01/2006"))
	fmt.Fprintf(&b, "⏰ Time: %s\n", at.Format("3:04:05 PM MST"))
	fmt.Fprintf(&b, "🆔 Order ID: %s\n", order.ID)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "🛒 Product: %s\n", EscapeMarkdown(order.ProductName))
	fmt.Fprintf(&b, "💰 Amount: ₹%s\n", order.Amount.String())
	b.WriteString("💳 Method: UPI\n")
	fmt.Fprintf(&b, "🔗 UPI ID: %s\n", EscapeMarkdown(order.PaymentHandle))
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "📞 Support: %s\n", d.SupportLink())
	b.WriteString("⏱️ ETA: 15-30 minutes\n")
	b.WriteString("🛡️ Warranty: 7 days\n")
	b.WriteString(rule)
	return b.String()
}

// FormatAdminAlert is the operator notification. It is sent as the caption of
// the re-sent proof media.
func (d *Dispatcher) FormatAdminAlert(order domain.Order, submitterHandle string) string {
	customer := order.UserID
	if h := strings.TrimPrefix(strings.TrimSpace(submitterHandle), "@"); h != "" {
		customer = fmt.Sprintf("@%s (id %s)", EscapeMarkdown(h), order.UserID)
	}

	tier := "normal price"
	if order.Discounted {
		tier = "discount price"
	}

	var b strings.Builder
	b.WriteString("🔔 *New Order - Verify Payment*\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "🆔 Order ID: %s\n", order.ID)
	fmt.Fprintf(&b, "👤 Customer: %s\n", customer)
	fmt.Fprintf(&b, "🛒 Product: %s\n", EscapeMarkdown(order.ProductName))
	fmt.Fprintf(&b, "💰 Amount: ₹%s (%s)\n", order.Amount.String(), tier)
	fmt.Fprintf(&b, "🔗 UPI ID: %s\n", EscapeMarkdown(order.PaymentHandle))
	fmt.Fprintf(&b, "📅 Submitted: %s\n", order.SubmittedAt.In(d.cfg.Location).Format("02/01/2006 3:04:05 PM MST"))
	fmt.Fprintf(&b, "📎 Proof: %s", EscapeMarkdown(order.ProofMediaID))
	return b.String()
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// EscapeMarkdown escapes the characters that open an entity in legacy Markdown.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
