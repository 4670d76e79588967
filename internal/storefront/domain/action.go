package domain

import (
	"fmt"
	"strings"
)

// ActionKind discriminates button actions.
type ActionKind string

const (
	ActionBuy           ActionKind = "buy"
	ActionDiscountOffer ActionKind = "discount_offer"
	ActionCheckDiscount ActionKind = "check_discount"
	ActionViewProducts  ActionKind = "view_products"
	ActionUploadNow     ActionKind = "upload_now"
)

// Action is the structured payload behind an inline button. Transports
// serialize it opaquely and hand it back decoded on tap.
type Action struct {
	Kind          ActionKind
	ProductKey    string
	ForceDiscount bool
}

// BuyAction selects a product for purchase.
func BuyAction(productKey string, forceDiscount bool) Action {
	return Action{Kind: ActionBuy, ProductKey: productKey, ForceDiscount: forceDiscount}
}

// Validate checks that product-scoped actions carry a product key.
func (a Action) Validate() error {
	switch a.Kind {
	case ActionBuy, ActionDiscountOffer:
		if strings.TrimSpace(a.ProductKey) == "" {
			return fmt.Errorf("action %s requires a product key", a.Kind)
		}
	case ActionCheckDiscount, ActionViewProducts, ActionUploadNow:
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	if a.ForceDiscount && a.Kind != ActionBuy {
		return fmt.Errorf("action %s cannot force a discount", a.Kind)
	}
	return nil
}
