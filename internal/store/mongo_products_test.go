package store

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeProductDocumentLegacyFields(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "Bag",
		"slug":        "bag",
		"price":       "100.00",
		"saleEnabled": "true",
		"sale_price":  int32(80),
		"stock":       int64(5),
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if product.Price != 100 {
		t.Fatalf("expected price 100, got %v", product.Price)
	}
	if !product.SaleEnabled || product.EffectivePrice() != 80 {
		t.Fatalf("expected sale price to apply, got saleEnabled=%v price=%v", product.SaleEnabled, product.EffectivePrice())
	}
	if product.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", product.Stock)
	}
	if !product.IsActive {
		t.Fatal("expected missing isActive to default to true")
	}
}

func TestNormalizeProductDocumentDecimalPrice(t *testing.T) {
	price, err := primitive.ParseDecimal128("24.90")
	if err != nil {
		t.Fatal(err)
	}
	product, err := normalizeProductDocument(bson.M{"name": "Wallet", "price": price, "isActive": false})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if product.Price != 24.9 {
		t.Fatalf("expected price 24.9, got %v", product.Price)
	}
	if product.IsActive {
		t.Fatal("expected explicit isActive=false to be kept")
	}
}

func TestNormalizeProductDocumentRejectsGarbagePrice(t *testing.T) {
	if _, err := normalizeProductDocument(bson.M{"name": "Belt", "price": "cheap"}); err == nil {
		t.Fatal("expected an error for a non-numeric price")
	}
}
