package fx

import (
	"math"

	"github.com/noah-isme/backend-tienda/internal/money"
)

// Result carries a converted amount together with the Estimated flag, which
// reports that no applicable rate existed and the amount passed through 1:1.
// Callers treat an estimated result as a data-quality signal, not an error.
type Result struct {
	Amount    float64 `json:"amount"`
	Estimated bool    `json:"estimated"`
}

// Convert converts amount from one currency to another using the supplied
// rate table anchored on baseCurrency. See ConvertDetailed for the algorithm;
// this wrapper discards the Estimated flag for callers that only want a number.
func Convert(amount float64, from, to string, rates Table, baseCurrency string) float64 {
	return ConvertDetailed(amount, from, to, rates, baseCurrency).Amount
}

// ConvertDetailed is the single conversion entry point. The primary path
// routes through the base currency: divide by FROM/BASE once, multiply by
// TO/BASE once. When either anchor rate is missing it falls back to the
// direct FROM/TO pair, then the inverse TO/FROM pair, and finally to the
// best-effort anchored value, which degenerates to the unchanged amount when
// no rates exist at all. The result is rounded to 2 decimals exactly once at
// the boundary.
func ConvertDetailed(amount float64, from, to string, rates Table, baseCurrency string) Result {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	from = NormalizeCode(from)
	to = NormalizeCode(to)
	if amount == 0 || from == to {
		return Result{Amount: amount}
	}
	base := NormalizeCode(baseCurrency)
	if base == "" {
		base = DefaultBaseCurrency
	}

	rateToBase, hasToBase := rates.Rate(from, base)
	rateFromBase, hasFromBase := rates.Rate(to, base)

	// Single-division invariant: the amount is divided by an anchor rate at
	// most once on the way into the base currency.
	converted := amount
	if hasToBase {
		converted = amount / rateToBase
	}
	if hasFromBase {
		converted = converted * rateFromBase
	}
	if hasToBase && hasFromBase {
		return Result{Amount: money.Round2(converted)}
	}

	if direct, ok := rates.Rate(from, to); ok {
		return Result{Amount: money.Round2(amount * direct)}
	}
	if inverse, ok := rates.Rate(to, from); ok {
		return Result{Amount: money.Round2(amount / inverse)}
	}

	return Result{
		Amount:    money.Round2(converted),
		Estimated: !hasToBase && !hasFromBase,
	}
}
