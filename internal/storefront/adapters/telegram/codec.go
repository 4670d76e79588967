package telegram

import (
	"fmt"
	"strings"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
)

// Telegram rejects callback data longer than this many bytes.
const maxCallbackData = 64

const (
	tagBuy      = "buy"
	tagOffer    = "offer"
	tagCheck    = "check"
	tagProducts = "products"
	tagUpload   = "upload"

	discountFlag = "d"
)

// EncodeAction serializes an action into inline button callback data.
func EncodeAction(a domain.Action) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}

	var data string
	switch a.Kind {
	case domain.ActionBuy:
		data = tagBuy + ":" + a.ProductKey
		if a.ForceDiscount {
			data += ":" + discountFlag
		}
	case domain.ActionDiscountOffer:
		data = tagOffer + ":" + a.ProductKey
	case domain.ActionCheckDiscount:
		data = tagCheck
	case domain.ActionViewProducts:
		data = tagProducts
	case domain.ActionUploadNow:
		data = tagUpload
	}

	if len(data) > maxCallbackData {
		return "", fmt.Errorf("callback data for %s exceeds %d bytes", a.Kind, maxCallbackData)
	}
	return data, nil
}

// DecodeAction parses callback data produced by EncodeAction.
func DecodeAction(data string) (domain.Action, error) {
	parts := strings.Split(data, ":")

	var a domain.Action
	switch parts[0] {
	case tagBuy:
		if len(parts) < 2 || len(parts) > 3 {
			return domain.Action{}, fmt.Errorf("malformed buy action %q", data)
		}
		a = domain.BuyAction(parts[1], false)
		if len(parts) == 3 {
			if parts[2] != discountFlag {
				return domain.Action{}, fmt.Errorf("unknown buy flag %q", parts[2])
			}
			a.ForceDiscount = true
		}
	case tagOffer:
		if len(parts) != 2 {
			return domain.Action{}, fmt.Errorf("malformed offer action %q", data)
		}
		a = domain.Action{Kind: domain.ActionDiscountOffer, ProductKey: parts[1]}
	case tagCheck:
		a = domain.Action{Kind: domain.ActionCheckDiscount}
	case tagProducts:
		a = domain.Action{Kind: domain.ActionViewProducts}
	case tagUpload:
		a = domain.Action{Kind: domain.ActionUploadNow}
	default:
		return domain.Action{}, fmt.Errorf("unknown action %q", data)
	}

	if a.Kind != domain.ActionBuy && a.Kind != domain.ActionDiscountOffer && len(parts) != 1 {
		return domain.Action{}, fmt.Errorf("unexpected arguments in %q", data)
	}
	if err := a.Validate(); err != nil {
		return domain.Action{}, err
	}
	return a, nil
}
