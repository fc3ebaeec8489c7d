package models

import "testing"

func TestEffectivePriceUsesSalePriceWhenOnSale(t *testing.T) {
	p := Product{Price: 100, SaleEnabled: true, SalePrice: 75}
	if got := p.EffectivePrice(); got != 75 {
		t.Fatalf("expected sale price 75, got %v", got)
	}
	p.SaleEnabled = false
	if got := p.EffectivePrice(); got != 100 {
		t.Fatalf("expected regular price 100 when sale disabled, got %v", got)
	}
}

func TestEffectivePriceIgnoresSalePriceAbovePrice(t *testing.T) {
	p := Product{Price: 100, SaleEnabled: true, SalePrice: 120}
	if p.OnSale() {
		t.Fatal("expected product not to be on sale")
	}
	if got := p.EffectivePrice(); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if OrderStatus("refunded").Valid() {
		t.Fatal("expected refunded to be invalid")
	}
}
