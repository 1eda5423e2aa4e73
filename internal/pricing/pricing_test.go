package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/BIHBOB/ssiteJungle/internal/models"
)

func TestItemsSubtotal(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: 1, Name: "Monstera", Price: 500, Quantity: 2},
		{ProductID: 2, Name: "Ficus", Price: 350.50, Quantity: 1},
	}
	got := ItemsSubtotal(items)
	if want := decimal.NewFromFloat(1350.50); !got.Equal(want) {
		t.Fatalf("subtotal = %s, want %s", got, want)
	}
}

func TestPercentageDiscountIgnoresDelivery(t *testing.T) {
	promo := &models.PromoCode{DiscountType: models.DiscountPercentage, DiscountValue: 10}
	subtotal := decimal.NewFromInt(1000)
	delivery := decimal.NewFromInt(200)

	d := Discount(promo, subtotal)
	if want := decimal.NewFromInt(100); !d.Equal(want) {
		t.Fatalf("discount = %s, want %s", d, want)
	}
	total := Total(subtotal, d, delivery)
	if want := decimal.NewFromInt(1100); !total.Equal(want) {
		t.Fatalf("total = %s, want %s (delivery must not be discounted)", total, want)
	}
}

func TestFixedDiscountClampedToSubtotal(t *testing.T) {
	promo := &models.PromoCode{DiscountType: models.DiscountFixed, DiscountValue: 5000}
	subtotal := decimal.NewFromInt(300)

	d := Discount(promo, subtotal)
	if !d.Equal(subtotal) {
		t.Fatalf("discount = %s, want clamp to %s", d, subtotal)
	}
	total := Total(subtotal, d, decimal.NewFromInt(150))
	if want := decimal.NewFromInt(150); !total.Equal(want) {
		t.Fatalf("total = %s, want %s", total, want)
	}
}

func TestNegativeDiscountValueIsZero(t *testing.T) {
	promo := &models.PromoCode{DiscountType: models.DiscountFixed, DiscountValue: -50}
	if d := Discount(promo, decimal.NewFromInt(1000)); !d.IsZero() {
		t.Fatalf("discount = %s, want 0", d)
	}
}

func TestPercentageRounding(t *testing.T) {
	promo := &models.PromoCode{DiscountType: models.DiscountPercentage, DiscountValue: 15}
	// 15% of 333.33 = 49.9995 -> 50.00
	d := Discount(promo, decimal.NewFromFloat(333.33))
	if want := decimal.NewFromFloat(50.00); !d.Equal(want) {
		t.Fatalf("discount = %s, want %s", d, want)
	}
}

func TestNilPromo(t *testing.T) {
	if d := Discount(nil, decimal.NewFromInt(100)); !d.IsZero() {
		t.Fatalf("discount = %s, want 0", d)
	}
}
