package pricing

import (
	"math"

	"github.com/noah-isme/backend-tienda/internal/money"
)

// DefaultMarginPercent is applied when the caller omits the margin entirely.
// An explicit zero margin is honored and never substituted.
const DefaultMarginPercent = 40.0

// ApplyMargin marks up a base price by the given percentage. A nil margin
// means "caller omitted it" and selects DefaultMarginPercent; out-of-range
// values are clamped to [0, 100]. Invalid base prices yield 0.
func ApplyMargin(basePrice float64, marginPercent *float64) float64 {
	if math.IsNaN(basePrice) || math.IsInf(basePrice, 0) {
		return 0
	}
	margin := DefaultMarginPercent
	if marginPercent != nil {
		margin = money.ClampPercent(*marginPercent)
	}
	return money.Round2(basePrice * (1 + margin/100))
}

// MarginOf is a convenience for building the optional margin argument.
func MarginOf(percent float64) *float64 {
	return &percent
}
