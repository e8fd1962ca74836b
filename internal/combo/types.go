package combo

import "github.com/noah-isme/backend-tienda/internal/money"

// Product is the minimal catalog view the combo engine needs.
type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	BasePrice      float64 `json:"base_price"`
	BaseCurrencyID string  `json:"base_currency_id,omitempty"`
	Stock          float64 `json:"stock"`
}

// Combo is a bundle of catalog products sold as one purchasable unit with
// its own profit margin. The margin applies to the sum of constituent base
// prices, never to individually margined product prices.
type Combo struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	ProductIDs     []string           `json:"products"`
	Quantities     map[string]float64 `json:"productQuantities"`
	ProfitMargin   *float64           `json:"profitMargin,omitempty"`
	BaseTotalPrice *float64           `json:"baseTotalPrice,omitempty"`
}

// QuantityFor returns the configured quantity for a product, defaulting to 1.
func (c Combo) QuantityFor(productID string) float64 {
	qty, ok := c.Quantities[productID]
	if !ok || qty <= 0 {
		return 1
	}
	return qty
}

// Doc is a loosely-keyed combo document as persisted upstream, where the
// same field may appear under a snake_case or camelCase key. ComboFromDoc is
// the single place that tolerance lives; everything past the boundary works
// on the canonical Combo struct.
type Doc map[string]any

// ComboFromDoc normalizes a raw combo document into the canonical struct.
func ComboFromDoc(doc Doc) Combo {
	c := Combo{
		ID:   docString(doc, "id", "_id"),
		Name: docString(doc, "name"),
	}
	if raw, ok := docAny(doc, "products", "productIds", "product_ids"); ok {
		switch ids := raw.(type) {
		case []string:
			c.ProductIDs = append(c.ProductIDs, ids...)
		case []any:
			for _, id := range ids {
				if s, ok := id.(string); ok {
					c.ProductIDs = append(c.ProductIDs, s)
				}
			}
		}
	}
	if raw, ok := docAny(doc, "productQuantities", "product_quantities"); ok {
		if m, ok := raw.(map[string]any); ok {
			c.Quantities = make(map[string]float64, len(m))
			for id, qty := range m {
				if v, ok := docFloat(qty); ok {
					c.Quantities[id] = v
				}
			}
		}
	}
	if v, ok := docFloatKey(doc, "profitMargin", "profit_margin"); ok {
		c.ProfitMargin = &v
	}
	if v, ok := docFloatKey(doc, "baseTotalPrice", "base_total_price"); ok {
		c.BaseTotalPrice = &v
	}
	return c
}

// ProductFromDoc normalizes a raw product document.
func ProductFromDoc(doc Doc) Product {
	p := Product{
		ID:             docString(doc, "id", "_id"),
		Name:           docString(doc, "name"),
		BaseCurrencyID: docString(doc, "base_currency_id", "baseCurrencyId"),
	}
	if v, ok := docFloatKey(doc, "base_price", "basePrice"); ok {
		p.BasePrice = money.Sanitize(v)
	}
	if v, ok := docFloatKey(doc, "stock"); ok {
		p.Stock = money.Sanitize(v)
	}
	return p
}

func docAny(doc Doc, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := doc[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func docString(doc Doc, keys ...string) string {
	if v, ok := docAny(doc, keys...); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func docFloatKey(doc Doc, keys ...string) (float64, bool) {
	if v, ok := docAny(doc, keys...); ok {
		return docFloat(v)
	}
	return 0, false
}

func docFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
