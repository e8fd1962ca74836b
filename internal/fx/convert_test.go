package fx

import (
	"math"
	"testing"
)

func TestConvertIdentity(t *testing.T) {
	rates := Table{"EUR/USD": 1.10}
	for _, amount := range []float64{0, 1, 99.99, 12345.67} {
		if got := Convert(amount, "EUR", "EUR", rates, "USD"); got != amount {
			t.Fatalf("identity conversion changed %v to %v", amount, got)
		}
	}
}

func TestConvertAnchored(t *testing.T) {
	rates := Table{
		"EUR/USD": 0.92,
		"CUP/USD": 120,
	}
	// 92 EUR -> 100 USD -> 12000 CUP, one division and one multiplication.
	got := Convert(92, "EUR", "CUP", rates, "USD")
	if got != 12000 {
		t.Fatalf("expected 12000, got %v", got)
	}
}

func TestConvertDirectFallback(t *testing.T) {
	rates := Table{"EUR/USD": 1.10}
	// USD/USD anchor is absent, so the direct pair governs.
	got := Convert(100, "EUR", "USD", rates, "USD")
	if got != 110 {
		t.Fatalf("expected 110.00, got %v", got)
	}
}

func TestConvertInverseFallback(t *testing.T) {
	rates := Table{"EUR/USD": 1.10}
	got := Convert(110, "USD", "EUR", rates, "USD")
	if got != 100 {
		t.Fatalf("expected 100.00, got %v", got)
	}
}

func TestConvertMissingRatesPassthrough(t *testing.T) {
	res := ConvertDetailed(250, "CUP", "EUR", Table{}, "USD")
	if res.Amount != 250 {
		t.Fatalf("expected passthrough amount 250, got %v", res.Amount)
	}
	if !res.Estimated {
		t.Fatal("expected passthrough result to be flagged estimated")
	}
}

func TestConvertAnchoredNotEstimated(t *testing.T) {
	rates := Table{"EUR/USD": 0.92, "CUP/USD": 120}
	res := ConvertDetailed(92, "EUR", "CUP", rates, "USD")
	if res.Estimated {
		t.Fatal("anchored conversion must not be flagged estimated")
	}
}

func TestConvertIgnoresNonPositiveRates(t *testing.T) {
	rates := Table{"EUR/USD": 0, "USD/EUR": -2}
	res := ConvertDetailed(80, "EUR", "USD", rates, "USD")
	if res.Amount != 80 || !res.Estimated {
		t.Fatalf("zero and negative rates must be treated as absent, got %+v", res)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	rates := Table{
		"EUR/USD": 0.9173,
		"GBP/USD": 0.7841,
	}
	for _, amount := range []float64{1, 42.42, 999.99, 15000} {
		there := Convert(amount, "EUR", "GBP", rates, "USD")
		back := Convert(there, "GBP", "EUR", rates, "USD")
		if math.Abs(back-amount) > 0.02 {
			t.Fatalf("round trip drifted: %v -> %v -> %v", amount, there, back)
		}
	}
}

func TestConvertInvalidAmount(t *testing.T) {
	rates := Table{"EUR/USD": 1.1}
	if got := Convert(math.NaN(), "EUR", "USD", rates, "USD"); got != 0 {
		t.Fatalf("NaN amount should coerce to 0, got %v", got)
	}
	if got := Convert(math.Inf(1), "EUR", "USD", rates, "USD"); got != 0 {
		t.Fatalf("Inf amount should coerce to 0, got %v", got)
	}
}

func TestTableRate(t *testing.T) {
	table := Table{"EUR/USD": 1.2}
	if _, ok := table.Rate("USD", "EUR"); ok {
		t.Fatal("inverse key must not resolve implicitly")
	}
	rate, ok := table.Rate("EUR", "USD")
	if !ok || rate != 1.2 {
		t.Fatalf("expected 1.2, got %v ok=%v", rate, ok)
	}
}
