// Package order implements checkout and the order lifecycle: snapshotting the
// selected cart into a persisted order and advancing it through the delivery
// status progression.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshfold/laundrokart/internal/domain/cart"
	"github.com/freshfold/laundrokart/internal/domain/delivery"
)

// Sentinel errors for checkout and status transitions.
var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyCheckout  = errors.New("nothing selected for checkout")
	ErrTerminalStatus = errors.New("order already delivered")
	// ErrStatusConflict is returned when a status update lost a race: the
	// order moved on since it was read. The caller should reload and retry
	// explicitly; there is no automatic retry.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// Order is a completed checkout: the cart group snapshot plus the derived
// totals, progressing through the delivery statuses.
type Order struct {
	ID             string
	SessionID      string
	Groups         []cart.Group
	Subtotal       decimal.Decimal
	DeliveryFee    decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	CouponCode     string
	Status         delivery.Status
	IdempotencyKey string
	CreatedAt      time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Order, error)
	ListByStatus(ctx context.Context, statuses []delivery.Status) ([]Order, error)
	// UpdateStatus performs a compare-and-set: the row is updated only when
	// its current status still equals from. It reports whether a row changed.
	UpdateStatus(ctx context.Context, id string, from, to delivery.Status) (bool, error)
}
