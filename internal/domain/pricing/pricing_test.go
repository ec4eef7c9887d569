package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshfold/laundrokart/internal/domain/cart"
)

func pricedState(t *testing.T) *cart.State {
	t.Helper()
	st := cart.NewState(cart.Cart{})
	st.AddItems("Wash & Fold", "svc-1", []cart.LineItem{
		{ID: "shirt", Name: "Shirt", UnitPrice: decimal.RequireFromString("2.50"), Quantity: 4},
	})
	st.AddItems("Ironing", "svc-2", []cart.LineItem{
		{ID: "dress", Name: "Dress", UnitPrice: decimal.RequireFromString("90.00"), Quantity: 1},
	})
	return st
}

func TestSubtotal_SelectedOnly(t *testing.T) {
	st := pricedState(t)

	full := Subtotal(&st.Cart, &st.Selection)
	assert.True(t, decimal.RequireFromString("100.00").Equal(full), "got %s", full)

	require.NoError(t, st.ToggleGroup(1, false))
	partial := Subtotal(&st.Cart, &st.Selection)
	assert.True(t, decimal.RequireFromString("10.00").Equal(partial), "got %s", partial)

	require.NoError(t, st.ToggleGroup(0, false))
	assert.True(t, Subtotal(&st.Cart, &st.Selection).IsZero())
}

func TestDeliveryFee(t *testing.T) {
	assert.True(t, DeliveryFee(decimal.NewFromInt(1)).Equal(decimal.NewFromInt(5)))
	assert.True(t, DeliveryFee(decimal.Zero).IsZero())
}

func TestTotal_DiscountAppliesToSubtotalOnly(t *testing.T) {
	subtotal := decimal.NewFromInt(100)
	fee := DeliveryFee(subtotal)

	total := Total(subtotal, fee, 10)
	// 100 + 5 - 10, not (100+5) * 0.9.
	assert.True(t, decimal.NewFromInt(95).Equal(total), "got %s", total)

	noCoupon := Total(subtotal, fee, 0)
	assert.True(t, decimal.NewFromInt(105).Equal(noCoupon))
}

func TestApplyCoupon_KnownCodes(t *testing.T) {
	c, err := ApplyCoupon("SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 10, c.DiscountPercent)

	c, err = ApplyCoupon("SAVE20")
	require.NoError(t, err)
	assert.Equal(t, 20, c.DiscountPercent)
}

func TestApplyCoupon_CaseInsensitive(t *testing.T) {
	c, err := ApplyCoupon("save10")
	require.NoError(t, err)
	assert.Equal(t, 10, c.DiscountPercent)
	// The code is kept as typed.
	assert.Equal(t, "save10", c.Code)
}

func TestApplyCoupon_MissReturnsZeroState(t *testing.T) {
	c, err := ApplyCoupon("BOGUS")
	require.ErrorIs(t, err, ErrInvalidCoupon)
	assert.Equal(t, Coupon{}, c)

	c, err = ApplyCoupon("")
	require.ErrorIs(t, err, ErrInvalidCoupon)
	assert.Equal(t, Coupon{}, c)
}

func TestQuoteFor(t *testing.T) {
	st := pricedState(t)
	coupon, err := ApplyCoupon("SAVE20")
	require.NoError(t, err)

	q := QuoteFor(&st.Cart, &st.Selection, coupon)
	assert.True(t, decimal.RequireFromString("100.00").Equal(q.Subtotal))
	assert.True(t, decimal.NewFromInt(5).Equal(q.DeliveryFee))
	assert.Equal(t, 20, q.DiscountPercent)
	assert.True(t, decimal.RequireFromString("20.00").Equal(q.Discount), "got %s", q.Discount)
	assert.True(t, decimal.RequireFromString("85.00").Equal(q.Total), "got %s", q.Total)
}

func TestQuoteFor_EmptySelection(t *testing.T) {
	st := pricedState(t)
	require.NoError(t, st.ToggleGroup(0, false))
	require.NoError(t, st.ToggleGroup(1, false))

	q := QuoteFor(&st.Cart, &st.Selection, Coupon{})
	assert.True(t, q.Subtotal.IsZero())
	assert.True(t, q.DeliveryFee.IsZero())
	assert.True(t, q.Total.IsZero())
}
