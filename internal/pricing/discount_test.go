package pricing

import (
	"math"
	"testing"
)

func TestDiscountAmountBounds(t *testing.T) {
	price := 79.99
	for _, percent := range []float64{0, 1, 25, 50, 99, 100} {
		amount := DiscountAmount(price, percent)
		if amount < 0 || amount > price {
			t.Fatalf("discount %v for %v%% escaped [0, price]", amount, percent)
		}
	}
}

func TestApplyDiscountZeroIdempotent(t *testing.T) {
	if got := ApplyDiscount(49.99, 0); got != 49.99 {
		t.Fatalf("expected 49.99 unchanged, got %v", got)
	}
}

func TestDiscountAmountNonPositiveInputs(t *testing.T) {
	if got := DiscountAmount(-10, 20); got != 0 {
		t.Fatalf("negative price should yield 0, got %v", got)
	}
	if got := DiscountAmount(100, -5); got != 0 {
		t.Fatalf("negative percent should yield 0, got %v", got)
	}
}

func TestBuildDiscountBreakdownSequentialStacking(t *testing.T) {
	offer := &Offer{ID: "offer-1", DiscountType: DiscountTypePercentage, DiscountValue: 10}
	bd := BuildDiscountBreakdown(BreakdownInput{Amount: 200, CategoryPercent: 50, Offer: offer})
	// Category halves 200 to 100, then the offer takes 10% of 100, never of 200.
	if bd.CategoryAmount != 100 {
		t.Fatalf("expected category discount 100, got %v", bd.CategoryAmount)
	}
	if bd.OfferAmount != 10 {
		t.Fatalf("expected offer discount 10 on post-category amount, got %v", bd.OfferAmount)
	}
	if bd.FinalAmount != 90 {
		t.Fatalf("expected final amount 90, got %v", bd.FinalAmount)
	}
	if bd.TotalDiscount != 110 {
		t.Fatalf("expected total discount 110, got %v", bd.TotalDiscount)
	}
	if bd.EffectiveTotalPercent != 55 {
		t.Fatalf("expected effective percent 55, got %v", bd.EffectiveTotalPercent)
	}
}

func TestRoundingStability(t *testing.T) {
	// Repeated discount/margin application on rounded inputs must never
	// produce more than two decimal digits.
	value := 123.45
	for i := 0; i < 10; i++ {
		value = ApplyDiscount(value, 7)
		value = ApplyMargin(value, MarginOf(7))
		if cents := value * 100; math.Abs(cents-math.Round(cents)) > 1e-9 {
			t.Fatalf("iteration %d produced sub-cent precision: %v", i, value)
		}
	}
}
