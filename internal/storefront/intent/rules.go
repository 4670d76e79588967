package intent

import (
	"fmt"
	"strings"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/catalog"
	"github.com/dejobratic/tdsbot/internal/storefront/pricing"
	"github.com/shopspring/decimal"
)

// Quick names a canned-response intent.
type Quick string

const (
	QuickPriceInquiry    Quick = "price_inquiry"
	QuickDiscountStatus  Quick = "discount_status_inquiry"
	QuickPaymentInquiry  Quick = "payment_inquiry"
	QuickTrustInquiry    Quick = "trust_inquiry"
	QuickWhyCheap        Quick = "why_cheap_inquiry"
	QuickSupportInquiry  Quick = "support_inquiry"
	QuickHelp            Quick = "help"
	QuickCapabilities    Quick = "capabilities"
	QuickIdentity        Quick = "identity"
	QuickThanks          Quick = "thanks"
	QuickFarewell        Quick = "farewell"
	QuickGreeting        Quick = "greeting"
)

// Settings carries the store facts quoted by canned replies.
type Settings struct {
	StoreName     string
	SupportURL    string
	PaymentHandle string
}

// ReplyContext is what a canned reply may depend on.
type ReplyContext struct {
	Now      time.Time
	Settings Settings
	Catalog  *catalog.Catalog
	Pricing  *pricing.Engine
}

// Rule binds keywords to a quick intent and its reply. Keywords are matched
// as substrings of the normalised text.
type Rule struct {
	Intent   Quick
	Keywords []string
	Reply    func(ReplyContext) string
}

// DefaultRules is the quick-intent table. Order is precedence: the first rule
// with a matching keyword wins, so broader words such as "hi" sit last.
func DefaultRules() []Rule {
	return []Rule{
		{
			Intent:   QuickPriceInquiry,
			Keywords: []string{"price", "prices", "how much", "cost", "costs"},
			Reply: func(rc ReplyContext) string {
				return fmt.Sprintf("💰 Our prices start from ₹%s! Use /products to see all products or ask for a specific one like \"Netflix price?\"",
					lowestAmount(rc))
			},
		},
		{
			Intent:   QuickDiscountStatus,
			Keywords: []string{"sunday", "offer", "offers", "discount", "discounts", "sale"},
			Reply: func(rc ReplyContext) string {
				if rc.Pricing.IsDiscountDay(rc.Now) {
					return "🎉 YES! Sunday offers are ACTIVE! 20% OFF all products. Check /sunday for prices!"
				}
				return "⏳ Sunday offers unlock every Sunday. Check /sunday for countdown."
			},
		},
		{
			Intent:   QuickPaymentInquiry,
			Keywords: []string{"how to pay", "payment", "pay", "upi"},
			Reply: func(rc ReplyContext) string {
				return fmt.Sprintf("💳 Pay via UPI: %s. We show the payment details during purchase. Scan with GPay/PhonePe/Paytm or send to the UPI ID.",
					rc.Settings.PaymentHandle)
			},
		},
		{
			Intent:   QuickTrustInquiry,
			Keywords: []string{"legit", "trust", "genuine", "real", "scam", "safe"},
			Reply: func(ReplyContext) string {
				return "🤝 Trusted by 500+ customers! Official subscriptions, manual verification, 24/7 support and a 7-day warranty."
			},
		},
		{
			Intent:   QuickWhyCheap,
			Keywords: []string{"cheap", "so low", "why low"},
			Reply: func(ReplyContext) string {
				return "💰 Our prices are low because we use bulk family plans and regional pricing. /whycheap for details."
			},
		},
		{
			Intent:   QuickSupportInquiry,
			Keywords: []string{"contact", "support", "whatsapp", "call"},
			Reply: func(rc ReplyContext) string {
				return fmt.Sprintf("📞 WhatsApp support: %s\nWe reply within minutes!", rc.Settings.SupportURL)
			},
		},
		{
			Intent:   QuickHelp,
			Keywords: []string{"help"},
			Reply: func(ReplyContext) string {
				return "🆘 Use /help for the detailed guide or just ask me anything!"
			},
		},
		{
			Intent:   QuickCapabilities,
			Keywords: []string{"what can you do"},
			Reply: func(ReplyContext) string {
				return "🤖 I can:\n• Show product prices /products\n• Process purchases\n• Explain Sunday offers /sunday\n• Answer questions\n• Guide the payment process\n\nTry asking anything!"
			},
		},
		{
			Intent:   QuickIdentity,
			Keywords: []string{"who are you"},
			Reply: func(rc ReplyContext) string {
				return fmt.Sprintf("🤖 I'm the %s assistant, here to help you buy premium subscriptions at amazing prices!", rc.Settings.StoreName)
			},
		},
		{
			Intent:   QuickThanks,
			Keywords: []string{"thanks", "thank you", "thank"},
			Reply: func(ReplyContext) string {
				return "😊 You're welcome! Let me know if you need anything else!"
			},
		},
		{
			Intent:   QuickFarewell,
			Keywords: []string{"bye", "goodbye"},
			Reply: func(ReplyContext) string {
				return "👋 Goodbye! Come back anytime for great deals!"
			},
		},
		{
			Intent:   QuickGreeting,
			Keywords: []string{"hello", "hey", "hi"},
			Reply: func(rc ReplyContext) string {
				return fmt.Sprintf("👋 Hello! Welcome to %s! Looking for amazing deals on subscriptions? 😊", rc.Settings.StoreName)
			},
		},
	}
}

// purchaseVerbs are the tokens that signal an intent to buy.
var purchaseVerbs = []string{"buy", "purchase", "order", "want", "get", "subscribe"}

func lowestAmount(rc ReplyContext) string {
	var lowest decimal.Decimal
	for i, p := range rc.Catalog.List() {
		amount := rc.Pricing.Quote(p, rc.Now).Amount
		if i == 0 || amount.LessThan(lowest) {
			lowest = amount
		}
	}
	return lowest.String()
}

// normalize lowercases the text and reduces every run of non-alphanumeric
// characters to a single space.
func normalize(text string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(text) {
		if isWordRune(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127
}
