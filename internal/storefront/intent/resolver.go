// Package intent classifies free text into a single intent using an ordered
// keyword table, catalog product mentions and purchase verbs.
package intent

import (
	"strings"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/catalog"
	"github.com/dejobratic/tdsbot/internal/storefront/pricing"
)

// Kind is the resolution outcome.
type Kind string

const (
	KindQuick    Kind = "quick"
	KindProduct  Kind = "product_mention"
	KindPurchase Kind = "purchase_intent"
	KindFallback Kind = "fallback"
)

// Intent is the result of resolving one message.
type Intent struct {
	Kind       Kind
	Quick      Quick
	ProductKey string
	// Reply is set for quick intents only.
	Reply string
	// Text is the normalised input.
	Text string
}

// Resolver maps text to intents. It holds no mutable state and is safe for
// concurrent use.
type Resolver struct {
	catalog  *catalog.Catalog
	pricing  *pricing.Engine
	settings Settings
	rules    []Rule
}

// NewResolver builds a resolver over the default rule table.
func NewResolver(c *catalog.Catalog, p *pricing.Engine, s Settings) *Resolver {
	return NewResolverWithRules(c, p, s, DefaultRules())
}

// NewResolverWithRules builds a resolver over a caller-supplied rule table.
func NewResolverWithRules(c *catalog.Catalog, p *pricing.Engine, s Settings, rules []Rule) *Resolver {
	return &Resolver{catalog: c, pricing: p, settings: s, rules: rules}
}

// Resolve classifies text. Precedence: quick-intent table in declared order,
// then a catalog product (a purchase when a purchase verb is also present),
// then a bare purchase verb, then fallback.
func (r *Resolver) Resolve(text string, now time.Time) Intent {
	normalized := normalize(text)
	if normalized == "" {
		return Intent{Kind: KindFallback}
	}

	if rule, ok := r.matchRule(normalized); ok {
		return Intent{
			Kind:  KindQuick,
			Quick: rule.Intent,
			Reply: rule.Reply(ReplyContext{Now: now, Settings: r.settings, Catalog: r.catalog, Pricing: r.pricing}),
			Text:  normalized,
		}
	}

	productKey := r.matchProduct(normalized)
	wantsToBuy := hasPurchaseVerb(normalized)

	switch {
	case productKey != "" && wantsToBuy:
		return Intent{Kind: KindPurchase, ProductKey: productKey, Text: normalized}
	case productKey != "":
		return Intent{Kind: KindProduct, ProductKey: productKey, Text: normalized}
	case wantsToBuy:
		return Intent{Kind: KindPurchase, Text: normalized}
	default:
		return Intent{Kind: KindFallback, Text: normalized}
	}
}

// matchRule returns the first declared rule with a keyword anywhere in text.
// "hi" also matches inside "this"; only declaration order breaks overlaps.
func (r *Resolver) matchRule(text string) (Rule, bool) {
	for _, rule := range r.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

// matchProduct returns the first catalog product, in catalog order, whose key
// or display name appears in text.
func (r *Resolver) matchProduct(text string) string {
	for _, p := range r.catalog.List() {
		if strings.Contains(text, p.Key) {
			return p.Key
		}
		if name := normalize(p.Name); name != "" && strings.Contains(text, name) {
			return p.Key
		}
	}
	return ""
}

func hasPurchaseVerb(text string) bool {
	for _, token := range strings.Fields(text) {
		for _, verb := range purchaseVerbs {
			if token == verb {
				return true
			}
		}
	}
	return false
}
