package combo

import (
	"github.com/noah-isme/backend-tienda/internal/money"
	"github.com/noah-isme/backend-tienda/internal/pricing"
)

// ConvertFunc normalizes an amount between currencies. It matches the fx
// package signature minus the rate table, which the caller binds in advance
// so the engine stays pure over its arguments.
type ConvertFunc func(amount float64, from, to string) float64

// Params carries everything a combo pricing computation needs.
type Params struct {
	Combo               Combo
	Products            map[string]Product
	Convert             ConvertFunc
	SelectedCurrencyID  string
	BaseCurrencyID      string
	DefaultProfitMargin float64
}

// Pricing is the computed bundle price in the selected display currency.
// Estimated reports that the base total came from the persisted snapshot
// rather than live constituent prices.
type Pricing struct {
	BasePrice  float64 `json:"basePrice"`
	FinalPrice float64 `json:"finalPrice"`
	Estimated  bool    `json:"estimated,omitempty"`
}

// ComputePricing prices a bundle. It first recomputes the base total live
// from constituent products, normalizing each native price to the base
// currency before multiplying by quantity. A positive live sum wins;
// otherwise the persisted snapshot total covers deleted or renamed
// constituents. The combo's own margin applies once, to the converted base
// total. Constituent prices carry no margin of their own here, so none is
// ever re-applied.
func ComputePricing(p Params) Pricing {
	var liveTotal float64
	for _, productID := range p.Combo.ProductIDs {
		product, ok := p.Products[productID]
		if !ok {
			continue
		}
		unit := money.Sanitize(product.BasePrice)
		native := product.BaseCurrencyID
		if native != "" && native != p.BaseCurrencyID && p.Convert != nil {
			unit = p.Convert(unit, native, p.BaseCurrencyID)
		}
		liveTotal += unit * p.Combo.QuantityFor(productID)
	}
	liveTotal = money.Round2(liveTotal)

	baseTotal := liveTotal
	estimated := false
	if baseTotal <= 0 && p.Combo.BaseTotalPrice != nil {
		baseTotal = money.Round2(money.Sanitize(*p.Combo.BaseTotalPrice))
		estimated = true
	}

	display := baseTotal
	if p.SelectedCurrencyID != "" && p.SelectedCurrencyID != p.BaseCurrencyID && p.Convert != nil {
		display = money.Round2(p.Convert(baseTotal, p.BaseCurrencyID, p.SelectedCurrencyID))
	}

	margin := p.Combo.ProfitMargin
	if margin == nil {
		margin = pricing.MarginOf(p.DefaultProfitMargin)
	}
	return Pricing{
		BasePrice:  display,
		FinalPrice: pricing.ApplyMargin(display, margin),
		Estimated:  estimated,
	}
}
