package api

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/freshfold/laundrokart/internal/domain/cart"
	"github.com/freshfold/laundrokart/internal/domain/catalog"
	"github.com/freshfold/laundrokart/internal/domain/order"
	"github.com/freshfold/laundrokart/internal/domain/pricing"
)

// encodeMoney writes the decimal as a raw JSON number from its exact string
// form. A float64 round trip could leak binary artifacts into totals.
func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

// encodeCartView renders the cart with per-item selection flags plus the
// derived pricing quote.
func encodeCartView(e *jx.Encoder, st *cart.State, coupon pricing.Coupon) {
	quote := pricing.QuoteFor(&st.Cart, &st.Selection, coupon)

	e.Obj(func(e *jx.Encoder) {
		e.Field("groups", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for gi, g := range st.Cart.Groups {
					encodeGroup(e, st, gi, g)
				}
			})
		})
		e.Field("coupon", func(e *jx.Encoder) { encodeCoupon(e, coupon) })
		e.Field("quote", func(e *jx.Encoder) { encodeQuote(e, quote) })
	})
}

func encodeGroup(e *jx.Encoder, st *cart.State, gi int, g cart.Group) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("key", func(e *jx.Encoder) { e.Int(gi) })
		e.Field("serviceLabel", func(e *jx.Encoder) { e.Str(g.ServiceLabel) })
		e.Field("serviceRef", func(e *jx.Encoder) { e.Str(g.ServiceRef) })
		e.Field("selected", func(e *jx.Encoder) { e.Bool(st.Selection.GroupSelected(gi)) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range g.Items {
					encodeLineItem(e, st, gi, item)
				}
			})
		})
	})
}

func encodeLineItem(e *jx.Encoder, st *cart.State, gi int, item cart.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(item.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
		e.Field("unitPrice", func(e *jx.Encoder) { encodeMoney(e, item.UnitPrice) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
		if item.ImageRef != "" {
			e.Field("image", func(e *jx.Encoder) { e.Str(item.ImageRef) })
		}
		e.Field("selected", func(e *jx.Encoder) { e.Bool(st.Selection.ItemSelected(gi, item.ID)) })
	})
}

func encodeCoupon(e *jx.Encoder, c pricing.Coupon) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(c.Code) })
		e.Field("discountPercent", func(e *jx.Encoder) { e.Int(c.DiscountPercent) })
	})
}

func encodeQuote(e *jx.Encoder, q pricing.Quote) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("subtotal", func(e *jx.Encoder) { encodeMoney(e, q.Subtotal) })
		e.Field("deliveryFee", func(e *jx.Encoder) { encodeMoney(e, q.DeliveryFee) })
		e.Field("discountPercent", func(e *jx.Encoder) { e.Int(q.DiscountPercent) })
		e.Field("discount", func(e *jx.Encoder) { encodeMoney(e, q.Discount) })
		e.Field("total", func(e *jx.Encoder) { encodeMoney(e, q.Total) })
	})
}

func encodeService(e *jx.Encoder, s catalog.Service) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(s.ID) })
		e.Field("slug", func(e *jx.Encoder) { e.Str(s.Slug) })
		e.Field("name", func(e *jx.Encoder) { e.Str(s.Name) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range s.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(item.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
						e.Field("price", func(e *jx.Encoder) { encodeMoney(e, item.Price) })
						if item.ImageRef != "" {
							e.Field("image", func(e *jx.Encoder) { e.Str(item.ImageRef) })
						}
					})
				}
			})
		})
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("subtotal", func(e *jx.Encoder) { encodeMoney(e, o.Subtotal) })
		e.Field("deliveryFee", func(e *jx.Encoder) { encodeMoney(e, o.DeliveryFee) })
		e.Field("discount", func(e *jx.Encoder) { encodeMoney(e, o.Discount) })
		e.Field("total", func(e *jx.Encoder) { encodeMoney(e, o.Total) })
		if o.CouponCode != "" {
			e.Field("couponCode", func(e *jx.Encoder) { e.Str(o.CouponCode) })
		}
		e.Field("groups", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, g := range o.Groups {
					e.Obj(func(e *jx.Encoder) {
						e.Field("serviceLabel", func(e *jx.Encoder) { e.Str(g.ServiceLabel) })
						e.Field("serviceRef", func(e *jx.Encoder) { e.Str(g.ServiceRef) })
						e.Field("items", func(e *jx.Encoder) {
							e.Arr(func(e *jx.Encoder) {
								for _, item := range g.Items {
									e.Obj(func(e *jx.Encoder) {
										e.Field("id", func(e *jx.Encoder) { e.Str(item.ID) })
										e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
										e.Field("unitPrice", func(e *jx.Encoder) { encodeMoney(e, item.UnitPrice) })
										e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
									})
								}
							})
						})
					})
				}
			})
		})
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.UTC().Format(time.RFC3339)) })
	})
}
