package pricing

import "github.com/noah-isme/backend-tienda/internal/money"

// OrderInput carries everything the order total calculation needs. All
// amounts are in the same (caller-chosen) currency.
type OrderInput struct {
	Subtotal                float64
	CategoryDiscountPercent float64
	Offer                   *Offer
	ShippingCost            float64
	TaxPercent              float64
}

// Breakdown is the fully itemized result of an order total calculation.
// Every field is independently recomputable from the inputs; it carries no
// hidden state and serializes directly into a receipt or order snapshot.
type Breakdown struct {
	Subtotal                float64 `json:"subtotal"`
	CategoryDiscountPercent float64 `json:"categoryDiscountPercent"`
	CategoryDiscountAmount  float64 `json:"categoryDiscountAmount"`
	AfterCategoryDiscount   float64 `json:"afterCategoryDiscount"`
	OfferDiscountAmount     float64 `json:"offerDiscountAmount"`
	OfferApplied            bool    `json:"offerApplied"`
	OfferReason             string  `json:"offerReason,omitempty"`
	AfterDiscounts          float64 `json:"afterDiscounts"`
	ShippingCost            float64 `json:"shippingCost"`
	SubtotalWithShipping    float64 `json:"subtotalWithShipping"`
	TaxPercent              float64 `json:"taxPercent"`
	TaxAmount               float64 `json:"taxAmount"`
	TotalDiscount           float64 `json:"totalDiscount"`
	Total                   float64 `json:"total"`
}

// CalculateOrderTotal composes the pricing pipeline in its fixed order:
// category discount on the raw subtotal, promotional offer on the
// post-category amount, shipping added undiscounted, then tax over the
// discounted subtotal plus shipping. TotalDiscount sums the two discount
// amounts rather than being re-derived from totals, so floating point drift
// can never hide the itemization.
func CalculateOrderTotal(in OrderInput) Breakdown {
	subtotal := money.Round2(money.Sanitize(in.Subtotal))
	categoryPercent := money.ClampPercent(in.CategoryDiscountPercent)
	categoryAmount := DiscountAmount(subtotal, categoryPercent)
	afterCategory := money.Round2(subtotal - categoryAmount)

	offer := ApplyOffer(afterCategory, in.Offer)
	afterDiscounts := offer.FinalSubtotal

	shipping := money.Round2(money.Sanitize(in.ShippingCost))
	withShipping := money.Round2(afterDiscounts + shipping)

	taxPercent := money.ClampPercent(in.TaxPercent)
	taxAmount := money.Round2(withShipping * taxPercent / 100)

	return Breakdown{
		Subtotal:                subtotal,
		CategoryDiscountPercent: categoryPercent,
		CategoryDiscountAmount:  categoryAmount,
		AfterCategoryDiscount:   afterCategory,
		OfferDiscountAmount:     offer.DiscountAmount,
		OfferApplied:            offer.Applied,
		OfferReason:             offer.Reason,
		AfterDiscounts:          afterDiscounts,
		ShippingCost:            shipping,
		SubtotalWithShipping:    withShipping,
		TaxPercent:              taxPercent,
		TaxAmount:               taxAmount,
		TotalDiscount:           money.Round2(categoryAmount + offer.DiscountAmount),
		Total:                   money.Round2(withShipping + taxAmount),
	}
}
