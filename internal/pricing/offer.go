package pricing

import "github.com/noah-isme/backend-tienda/internal/money"

// Discount types supported by promotional offers.
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
)

// Offer is a promotional discount rule. Offers are created and edited by the
// admin surface and are read-only to this engine.
type Offer struct {
	ID                string   `json:"id"`
	DiscountType      string   `json:"discount_type"`
	DiscountValue     float64  `json:"discount_value"`
	MinPurchaseAmount *float64 `json:"min_purchase_amount,omitempty"`
	MaxDiscountAmount *float64 `json:"max_discount_amount,omitempty"`
}

// OfferResult reports the outcome of applying an offer to a subtotal. An
// offer that cannot apply contributes zero discount and a reason; it is
// never an error.
type OfferResult struct {
	DiscountAmount float64 `json:"discountAmount"`
	FinalSubtotal  float64 `json:"finalSubtotal"`
	Applied        bool    `json:"offerApplied"`
	Reason         string  `json:"reason,omitempty"`
}

// ApplyOffer evaluates the offer against the subtotal. The minimum purchase
// gate is checked first; the computed discount is capped by the subtotal for
// fixed amounts and by MaxDiscountAmount when present.
func ApplyOffer(subtotal float64, offer *Offer) OfferResult {
	subtotal = money.Round2(money.Sanitize(subtotal))
	if offer == nil || offer.ID == "" {
		return OfferResult{FinalSubtotal: subtotal, Reason: "No offer provided"}
	}
	if offer.MinPurchaseAmount != nil && subtotal < *offer.MinPurchaseAmount {
		return OfferResult{
			FinalSubtotal: subtotal,
			Reason:        "Minimum purchase amount not met",
		}
	}

	var discount float64
	switch offer.DiscountType {
	case DiscountTypePercentage:
		discount = DiscountAmount(subtotal, offer.DiscountValue)
	case DiscountTypeFixedAmount:
		discount = money.Min(money.Sanitize(offer.DiscountValue), subtotal)
	default:
		return OfferResult{FinalSubtotal: subtotal, Reason: "Unknown discount type"}
	}
	if offer.MaxDiscountAmount != nil {
		discount = money.Min(discount, money.Sanitize(*offer.MaxDiscountAmount))
	}
	discount = money.Round2(discount)
	return OfferResult{
		DiscountAmount: discount,
		FinalSubtotal:  money.Round2(subtotal - discount),
		Applied:        true,
	}
}
