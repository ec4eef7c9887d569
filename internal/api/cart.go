package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/freshfold/laundrokart/internal/cartstore"
	"github.com/freshfold/laundrokart/internal/domain/cart"
	"github.com/freshfold/laundrokart/internal/domain/pricing"
	"github.com/freshfold/laundrokart/internal/session"
)

// cartContext is the loaded per-request cart state: the durable store, the
// session entry, and the state container combining both.
type cartContext struct {
	sessionID string
	store     *cartstore.Store
	entry     *session.Entry
	state     *cart.State
	release   func()
}

// loadCart resolves the session header, loads the cart from the persistence
// adapter, and acquires the session's transient state. On error the response
// has already been written and the returned context is nil.
func (h *Handler) loadCart(w http.ResponseWriter, r *http.Request) *cartContext {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing "+SessionHeader+" header")
		return nil
	}

	store := cartstore.New(h.kv(sessionID))
	c, err := store.Load(r.Context())
	if err != nil {
		// Corrupt legacy data has no fallback; everything else is a storage
		// failure. Both are fatal for this request.
		h.internalError(w, r, "load cart", err)
		return nil
	}

	entry, release := h.sessions.Acquire(sessionID, &c)
	return &cartContext{
		sessionID: sessionID,
		store:     store,
		entry:     entry,
		state:     cart.Restore(c, entry.Selection),
		release:   release,
	}
}

// finish mirrors the mutated state back into the session entry, persists the
// cart, and renders the cart view. Persistence is a post-condition of every
// mutation, ordered strictly after it.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, cc *cartContext) {
	cc.entry.Selection = cc.state.Selection

	if err := cc.store.Save(r.Context(), &cc.state.Cart); err != nil {
		h.internalError(w, r, "save cart", err)
		return
	}

	writeSuccess(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, cc.state, cc.entry.Coupon)
	})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cc := h.loadCart(w, r)
	if cc == nil {
		return
	}
	defer cc.release()

	cc.entry.Selection = cc.state.Selection
	writeSuccess(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, cc.state, cc.entry.Coupon)
	})
}

type addItemsRequest struct {
	ServiceLabel string           `json:"serviceLabel"`
	ServiceRef   string           `json:"serviceRef"`
	Items        []addItemRequest `json:"items"`
}

type addItemRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

func (h *Handler) addItems(w http.ResponseWriter, r *http.Request) {
	var req addItemsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items required")
		return
	}
	for _, item := range req.Items {
		if item.ID == "" || item.Name == "" {
			writeError(w, http.StatusUnprocessableEntity, "item id and name required")
			return
		}
		if item.Price.IsNegative() {
			writeError(w, http.StatusUnprocessableEntity, "item price must not be negative")
			return
		}
		if item.Quantity <= 0 {
			writeError(w, http.StatusUnprocessableEntity, "item quantity must be greater than 0")
			return
		}
	}

	cc := h.loadCart(w, r)
	if cc == nil {
		return
	}
	defer cc.release()

	items := make([]cart.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = cart.LineItem{
			ID:        item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
			ImageRef:  item.Image,
		}
	}
	cc.state.AddItems(req.ServiceLabel, req.ServiceRef, items)

	h.finish(w, r, cc)
}

type quantityRequest struct {
	GroupKey int    `json:"groupKey"`
	ItemID   string `json:"itemId"`
	Delta    int    `json:"delta"`
}

func (h *Handler) changeQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must not be zero")
		return
	}

	cc := h.loadCart(w, r)
	if cc == nil {
		return
	}
	defer cc.release()

	if err := cc.state.ChangeQuantity(req.GroupKey, req.ItemID, req.Delta); err != nil {
		writeCartError(w, err)
		return
	}
	h.finish(w, r, cc)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	groupKey, ok := pathGroupKey(w, r)
	if !ok {
		return
	}

	cc := h.loadCart(w, r)
	if cc == nil {
		return
	}
	defer cc.release()

	if err := cc.state.RemoveItem(groupKey, r.PathValue("itemID")); err != nil {
		writeCartError(w, err)
		return
	}
	h.finish(w, r, cc)
}

func (h *Handler) removeGroup(w http.ResponseWriter, r *http.Request) {
	groupKey, ok := pathGroupKey(w, r)
	if !ok {
		return
	}

	cc := h.loadCart(w, r)
	if cc == nil {
		return
	}
	defer cc.release()

	if err := cc.state.RemoveGroup(groupKey); err != nil {
		writeCartError(w, err)
		return
	}
	h.finish(w, r, cc)
}

type toggleRequest struct {
	Included bool `json:"included"`
}

func (h *Handler) toggleGroup(w http.ResponseWriter, r *http.Request) {
	groupKey, ok := pathGroupKey(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cc := h.loadCart(w, r)
	if cc == nil {
		return
	}
	defer cc.release()

	if err := cc.state.ToggleGroup(groupKey, req.Included); err != nil {
		writeCartError(w, err)
		return
	}

	// Selection-only change: nothing new to persist.
	cc.entry.Selection = cc.state.Selection
	writeSuccess(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, cc.state, cc.entry.Coupon)
	})
}

func (h *Handler) toggleItem(w http.ResponseWriter, r *http.Request) {
	groupKey, ok := pathGroupKey(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cc := h.loadCart(w, r)
	if cc == nil {
		return
	}
	defer cc.release()

	if err := cc.state.ToggleItem(groupKey, r.PathValue("itemID"), req.Included); err != nil {
		writeCartError(w, err)
		return
	}

	cc.entry.Selection = cc.state.Selection
	writeSuccess(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, cc.state, cc.entry.Coupon)
	})
}

type couponRequest struct {
	Code string `json:"code"`
}

func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cc := h.loadCart(w, r)
	if cc == nil {
		return
	}
	defer cc.release()

	coupon, err := pricing.ApplyCoupon(req.Code)
	if err != nil {
		// Invalid code clears any previously applied coupon.
		cc.entry.Coupon = pricing.Coupon{}
		writeError(w, http.StatusUnprocessableEntity, "invalid coupon code")
		return
	}

	cc.entry.Coupon = coupon
	cc.entry.Selection = cc.state.Selection
	writeSuccess(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, cc.state, cc.entry.Coupon)
	})
}

// decodeBody parses the JSON request body, answering 400 on malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func pathGroupKey(w http.ResponseWriter, r *http.Request) (int, bool) {
	key, err := strconv.Atoi(r.PathValue("groupKey"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "group key must be an integer")
		return 0, false
	}
	return key, true
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrGroupNotFound), errors.Is(err, cart.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
