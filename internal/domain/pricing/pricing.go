// Package pricing computes checkout totals over the selected portion of a
// cart: subtotal, flat delivery fee, and the percentage discount from the
// fixed coupon table.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/freshfold/laundrokart/internal/domain/cart"
)

var (
	hundred = decimal.NewFromInt(100)

	// flatDeliveryFee is charged whenever anything is selected.
	flatDeliveryFee = decimal.NewFromInt(5)
)

// Subtotal sums unit price times quantity over the items whose composite key
// is selected. Unselected items contribute nothing regardless of quantity.
func Subtotal(c *cart.Cart, sel *cart.Selection) decimal.Decimal {
	sum := decimal.Zero
	for gi, g := range c.Groups {
		for _, item := range g.Items {
			if !sel.ItemSelected(gi, item.ID) {
				continue
			}
			qty := decimal.NewFromInt(int64(item.Quantity))
			sum = sum.Add(item.UnitPrice.Mul(qty))
		}
	}
	return sum
}

// DeliveryFee returns the flat fee for a positive subtotal and zero otherwise.
func DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsPositive() {
		return flatDeliveryFee
	}
	return decimal.Zero
}

// Total combines subtotal, delivery fee, and the percentage discount. The
// discount applies to the subtotal only, never to the fee.
func Total(subtotal, deliveryFee decimal.Decimal, discountPercent int) decimal.Decimal {
	discount := DiscountAmount(subtotal, discountPercent)
	return subtotal.Add(deliveryFee).Sub(discount)
}

// DiscountAmount returns subtotal * percent / 100.
func DiscountAmount(subtotal decimal.Decimal, discountPercent int) decimal.Decimal {
	if discountPercent == 0 {
		return decimal.Zero
	}
	pct := decimal.NewFromInt(int64(discountPercent))
	return subtotal.Mul(pct).Div(hundred)
}

// Quote is the full derived pricing breakdown for a cart and selection.
type Quote struct {
	Subtotal        decimal.Decimal
	DeliveryFee     decimal.Decimal
	DiscountPercent int
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

// QuoteFor derives the complete pricing breakdown in one pass.
func QuoteFor(c *cart.Cart, sel *cart.Selection, coupon Coupon) Quote {
	subtotal := Subtotal(c, sel)
	fee := DeliveryFee(subtotal)
	discount := DiscountAmount(subtotal, coupon.DiscountPercent)

	return Quote{
		Subtotal:        subtotal,
		DeliveryFee:     fee,
		DiscountPercent: coupon.DiscountPercent,
		Discount:        discount,
		Total:           subtotal.Add(fee).Sub(discount),
	}
}
