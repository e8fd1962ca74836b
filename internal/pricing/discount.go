package pricing

import "github.com/noah-isme/backend-tienda/internal/money"

// DiscountAmount returns the absolute discount for a percentage of the price,
// rounded to 2 decimals. Non-positive prices or percentages yield 0.
func DiscountAmount(price, percent float64) float64 {
	price = money.Sanitize(price)
	percent = money.ClampPercent(percent)
	if price <= 0 || percent <= 0 {
		return 0
	}
	return money.Round2(price * percent / 100)
}

// ApplyDiscount subtracts the percentage discount from the price. The result
// is never negative.
func ApplyDiscount(price, percent float64) float64 {
	price = money.Sanitize(price)
	discounted := price - DiscountAmount(price, percent)
	if discounted < 0 {
		discounted = 0
	}
	return money.Round2(discounted)
}

// BreakdownInput describes a discount stacking request: a category percentage
// applied first, then an optional promotional offer on the reduced amount.
type BreakdownInput struct {
	Amount          float64
	CategoryPercent float64
	Offer           *Offer
}

// DiscountBreakdown itemizes how a discounted amount was derived.
type DiscountBreakdown struct {
	OriginalAmount        float64 `json:"originalAmount"`
	CategoryPercent       float64 `json:"categoryPercent"`
	CategoryAmount        float64 `json:"categoryAmount"`
	AfterCategory         float64 `json:"afterCategory"`
	OfferAmount           float64 `json:"offerAmount"`
	OfferApplied          bool    `json:"offerApplied"`
	OfferReason           string  `json:"offerReason,omitempty"`
	TotalDiscount         float64 `json:"totalDiscount"`
	EffectiveTotalPercent float64 `json:"effectiveTotalPercent"`
	FinalAmount           float64 `json:"finalAmount"`
}

// BuildDiscountBreakdown stacks the category discount and the offer
// sequentially: the offer evaluates against the post-category amount, never
// the original. EffectiveTotalPercent is derived from the combined absolute
// discount for display only; it feeds no further calculation.
func BuildDiscountBreakdown(in BreakdownInput) DiscountBreakdown {
	amount := money.Sanitize(in.Amount)
	categoryPercent := money.ClampPercent(in.CategoryPercent)
	categoryAmount := DiscountAmount(amount, categoryPercent)
	afterCategory := money.Round2(amount - categoryAmount)

	offer := ApplyOffer(afterCategory, in.Offer)

	totalDiscount := money.Round2(categoryAmount + offer.DiscountAmount)
	effective := 0.0
	if amount > 0 {
		effective = money.Round2(totalDiscount / amount * 100)
	}
	return DiscountBreakdown{
		OriginalAmount:        amount,
		CategoryPercent:       categoryPercent,
		CategoryAmount:        categoryAmount,
		AfterCategory:         afterCategory,
		OfferAmount:           offer.DiscountAmount,
		OfferApplied:          offer.Applied,
		OfferReason:           offer.Reason,
		TotalDiscount:         totalDiscount,
		EffectiveTotalPercent: effective,
		FinalAmount:           offer.FinalSubtotal,
	}
}
