package pricing

import "testing"

func TestCalculateOrderTotalComposition(t *testing.T) {
	bd := CalculateOrderTotal(OrderInput{
		Subtotal:                100,
		CategoryDiscountPercent: 10,
		ShippingCost:            5,
		TaxPercent:              0,
	})
	if bd.AfterCategoryDiscount != 90 {
		t.Fatalf("expected 90 after category discount, got %v", bd.AfterCategoryDiscount)
	}
	if bd.SubtotalWithShipping != 95 {
		t.Fatalf("expected 95 with shipping, got %v", bd.SubtotalWithShipping)
	}
	if bd.Total != 95 {
		t.Fatalf("expected total 95, got %v", bd.Total)
	}
}

func TestCalculateOrderTotalOfferAfterCategory(t *testing.T) {
	min := 150.0
	offer := &Offer{ID: "promo", DiscountType: DiscountTypeFixedAmount, DiscountValue: 30, MinPurchaseAmount: &min}
	bd := CalculateOrderTotal(OrderInput{
		Subtotal:                200,
		CategoryDiscountPercent: 30,
		Offer:                   offer,
	})
	// The gate sees the post-category amount: 140 < 150, so the offer skips.
	if bd.OfferApplied {
		t.Fatal("offer must evaluate against the post-category amount")
	}
	if bd.Total != 140 {
		t.Fatalf("expected total 140, got %v", bd.Total)
	}
}

func TestCalculateOrderTotalTaxOnShipping(t *testing.T) {
	bd := CalculateOrderTotal(OrderInput{
		Subtotal:     100,
		ShippingCost: 20,
		TaxPercent:   10,
	})
	if bd.TaxAmount != 12 {
		t.Fatalf("tax must cover subtotal plus shipping, got %v", bd.TaxAmount)
	}
	if bd.Total != 132 {
		t.Fatalf("expected total 132, got %v", bd.Total)
	}
}

func TestCalculateOrderTotalDiscountItemization(t *testing.T) {
	offer := &Offer{ID: "promo", DiscountType: DiscountTypePercentage, DiscountValue: 5}
	bd := CalculateOrderTotal(OrderInput{
		Subtotal:                100,
		CategoryDiscountPercent: 10,
		Offer:                   offer,
	})
	if bd.CategoryDiscountAmount != 10 || bd.OfferDiscountAmount != 4.5 {
		t.Fatalf("unexpected discount amounts: %+v", bd)
	}
	if bd.TotalDiscount != 14.5 {
		t.Fatalf("total discount must be the sum of itemized amounts, got %v", bd.TotalDiscount)
	}
}

func TestCalculateOrderTotalNeverNegative(t *testing.T) {
	offer := &Offer{ID: "promo", DiscountType: DiscountTypeFixedAmount, DiscountValue: 9999}
	bd := CalculateOrderTotal(OrderInput{Subtotal: 40, Offer: offer})
	if bd.AfterDiscounts < 0 || bd.Total < 0 {
		t.Fatalf("totals must never go negative, got %+v", bd)
	}
}
