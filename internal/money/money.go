package money

import "math"

// Amounts are carried as float64 and rounded to 2 decimal places at defined
// checkpoints. Helpers here coerce invalid numerics to zero instead of
// propagating NaN into a price.

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// ClampPercent restricts a percentage to [0, 100]. Out-of-range or
// non-finite input collapses to 0.
func ClampPercent(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Sanitize coerces NaN, infinities, and negative amounts to 0.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Min returns the smaller of two amounts.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
