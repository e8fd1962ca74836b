package fx

import "strings"

// DefaultBaseCurrency anchors conversions when the caller does not name one.
const DefaultBaseCurrency = "USD"

// Table maps "FROM/TO" pair keys to positive rates, meaning one unit of FROM
// equals the rate in TO. Keys are not guaranteed symmetric; the inverse pair
// may be absent. Callers supply a snapshot per calculation and the package
// never mutates it.
type Table map[string]float64

// PairKey builds the canonical lookup key for a currency pair.
func PairKey(from, to string) string {
	return from + "/" + to
}

// Rate returns the stored rate for the pair. Zero or negative entries are
// treated as absent so they can never be divided by.
func (t Table) Rate(from, to string) (float64, bool) {
	if len(t) == 0 {
		return 0, false
	}
	rate, ok := t[PairKey(from, to)]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}

// NormalizeCode trims surrounding whitespace from a currency code. Matching
// stays case-sensitive; "usd" and "USD" are distinct codes.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}
