package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/freshfold/laundrokart/internal/cartstore"
	"github.com/freshfold/laundrokart/internal/domain/delivery"
	"github.com/freshfold/laundrokart/internal/domain/order"
	"github.com/freshfold/laundrokart/internal/domain/pricing"
)

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	cc := h.loadCart(w, r)
	if cc == nil {
		return
	}
	defer cc.release()

	o, err := h.orders.Checkout(r.Context(), order.CheckoutRequest{
		SessionID:      cc.sessionID,
		State:          cc.state,
		Coupon:         cc.entry.Coupon,
		IdempotencyKey: r.Header.Get(IdempotencyHeader),
	})
	if err != nil {
		if errors.Is(err, order.ErrEmptyCheckout) {
			writeError(w, http.StatusUnprocessableEntity, "nothing selected for checkout")
			return
		}
		h.internalError(w, r, "checkout", err)
		return
	}

	// Mirror the handoff payload for the confirmation flow. The cart itself
	// stays intact until the order is confirmed downstream.
	quote := pricing.QuoteFor(&cc.state.Cart, &cc.state.Selection, cc.entry.Coupon)
	handoff := cartstore.Handoff{
		CartGroups:   o.Groups,
		Subtotal:     quote.Subtotal,
		DeliveryCost: quote.DeliveryFee,
		Discount:     quote.Discount,
		Total:        quote.Total,
	}
	if err := cc.store.SaveHandoff(r.Context(), handoff); err != nil {
		h.internalError(w, r, "save order handoff", err)
		return
	}

	writeSuccess(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []order.Order
		err    error
	)

	switch {
	case r.URL.Query().Has("view"):
		orders, err = h.orders.ListByView(r.Context(), r.URL.Query().Get("view"))
	case r.URL.Query().Has("status"):
		var status delivery.Status
		status, err = delivery.Parse(r.URL.Query().Get("status"))
		if err == nil {
			orders, err = h.orders.ListByStatus(r.Context(), []delivery.Status{status})
		}
	default:
		orders, err = h.orders.ListByStatus(r.Context(), allStatuses())
	}
	if err != nil {
		if errors.Is(err, delivery.ErrUnknownStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, "list orders", err)
		return
	}

	writeSuccess(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range orders {
				encodeOrder(e, &orders[i])
			}
		})
	})
}

// advanceOrderStatus moves an order one step along the fixed progression.
// On failure nothing changes server-side and the caller gets a blocking
// error; retrying is an explicit user action.
func (h *Handler) advanceOrderStatus(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.AdvanceStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrTerminalStatus):
			writeError(w, http.StatusConflict, "order already delivered")
		case errors.Is(err, order.ErrStatusConflict):
			writeError(w, http.StatusConflict, "order status changed, reload and retry")
		default:
			h.internalError(w, r, "advance order status", err)
		}
		return
	}

	writeSuccess(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}

func allStatuses() []delivery.Status {
	return []delivery.Status{
		delivery.StatusConfirmed,
		delivery.StatusPickedUp,
		delivery.StatusInProcess,
		delivery.StatusReady,
		delivery.StatusOutForDelivery,
		delivery.StatusDelivered,
	}
}
