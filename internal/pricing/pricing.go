// Package pricing holds the money math for checkout. Everything goes through
// shopspring/decimal so repeated percentage discounts don't drift the way
// raw float64 arithmetic does.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/BIHBOB/ssiteJungle/internal/models"
)

// ItemsSubtotal sums price*quantity over the cart lines.
func ItemsSubtotal(items []models.OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		sum = sum.Add(line)
	}
	return sum
}

// Discount computes the promo discount against the item subtotal only.
// Delivery is never discounted. Percentage discounts round half-up to two
// decimal places; fixed discounts are clamped to the subtotal so a total can
// never go negative.
func Discount(promo *models.PromoCode, subtotal decimal.Decimal) decimal.Decimal {
	if promo == nil {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch promo.DiscountType {
	case models.DiscountPercentage:
		pct := decimal.NewFromFloat(promo.DiscountValue).Div(decimal.NewFromInt(100))
		d = subtotal.Mul(pct).Round(2)
	case models.DiscountFixed:
		d = decimal.NewFromFloat(promo.DiscountValue)
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}

// Total is subtotal - discount + delivery.
func Total(subtotal, discount, delivery decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount).Add(delivery)
}
