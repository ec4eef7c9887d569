// Package api exposes the cart service over HTTP. Responses use the envelope
// shape {status: success|error, data, message}; cart routes are scoped by the
// X-Cart-Session header.
package api

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshfold/laundrokart/internal/cartstore"
	"github.com/freshfold/laundrokart/internal/domain/auth"
	"github.com/freshfold/laundrokart/internal/domain/catalog"
	"github.com/freshfold/laundrokart/internal/domain/order"
	"github.com/freshfold/laundrokart/internal/repository"
	"github.com/freshfold/laundrokart/internal/session"
)

// SessionHeader carries the cart session identifier on cart routes.
const SessionHeader = "X-Cart-Session"

// IdempotencyHeader carries the checkout idempotency key.
const IdempotencyHeader = "X-Idempotency-Key"

// KVFactory builds a session-scoped KV for the cart persistence adapter.
type KVFactory func(sessionID string) cartstore.KV

// PoolKVFactory returns the production factory backed by a pgx pool.
func PoolKVFactory(pool *pgxpool.Pool) KVFactory {
	return func(sessionID string) cartstore.KV {
		return repository.NewSessionKV(pool, sessionID)
	}
}

// Handler holds the API dependencies and implements all routes.
type Handler struct {
	kv       KVFactory
	sessions *session.Manager
	catalog  catalog.Repository
	orders   *order.Service
	apikeys  auth.Repository
	pepper   []byte
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(
	kv KVFactory,
	sessions *session.Manager,
	catalogRepo catalog.Repository,
	orderService *order.Service,
	apikeys auth.Repository,
	pepper []byte,
) *Handler {
	return &Handler{
		kv:       kv,
		sessions: sessions,
		catalog:  catalogRepo,
		orders:   orderService,
		apikeys:  apikeys,
		pepper:   pepper,
	}
}

// Routes returns the API route tree.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/services", h.listServices)
	mux.HandleFunc("GET /api/v1/services/{slug}", h.getService)

	mux.HandleFunc("GET /api/v1/cart", h.getCart)
	mux.HandleFunc("POST /api/v1/cart/items", h.addItems)
	mux.HandleFunc("POST /api/v1/cart/items/quantity", h.changeQuantity)
	mux.HandleFunc("DELETE /api/v1/cart/items/{groupKey}/{itemID}", h.removeItem)
	mux.HandleFunc("DELETE /api/v1/cart/groups/{groupKey}", h.removeGroup)
	mux.HandleFunc("PUT /api/v1/cart/selection/groups/{groupKey}", h.toggleGroup)
	mux.HandleFunc("PUT /api/v1/cart/selection/items/{groupKey}/{itemID}", h.toggleItem)
	mux.HandleFunc("POST /api/v1/cart/coupon", h.applyCoupon)
	mux.HandleFunc("POST /api/v1/checkout", h.checkout)

	staffOrDelivery := []auth.Role{auth.RoleStaff, auth.RoleDelivery}
	mux.Handle("GET /api/v1/orders", h.requireRole(http.HandlerFunc(h.listOrders), staffOrDelivery...))
	mux.Handle("PUT /api/v1/orders/{id}/status", h.requireRole(http.HandlerFunc(h.advanceOrderStatus), staffOrDelivery...))

	return mux
}

// writeSuccess writes the success envelope with data produced by fn.
func writeSuccess(w http.ResponseWriter, code int, fn func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str("success") })
		if fn != nil {
			e.Field("data", func(e *jx.Encoder) { fn(e) })
		}
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the error envelope with a user-facing message.
func writeError(w http.ResponseWriter, code int, message string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str("error") })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}
