package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/freshfold/laundrokart/internal/domain/cart"
	"github.com/freshfold/laundrokart/internal/domain/delivery"
	"github.com/freshfold/laundrokart/internal/domain/pricing"
)

// CheckoutRequest holds the input for the checkout handoff.
type CheckoutRequest struct {
	SessionID      string
	State          *cart.State
	Coupon         pricing.Coupon
	IdempotencyKey string
}

// Service encapsulates checkout and status progression business logic.
type Service struct {
	orders Repository
	guard  *CheckoutGuard
}

// NewService creates an order Service backed by the given repository.
func NewService(orders Repository) *Service {
	return &Service{
		orders: orders,
		guard:  NewCheckoutGuard(),
	}
}

// Checkout prices the selected portion of the cart, snapshots the groups and
// totals into a new confirmed order, and persists it. Submitting the same
// idempotency key twice returns the original order instead of creating a
// duplicate.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if req.IdempotencyKey != "" && s.guard.MaybeSeen(req.IdempotencyKey) {
		existing, err := s.orders.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, errors.Wrap(err, "check idempotency key")
		}
		// Bloom false positive: proceed with a fresh checkout.
	}

	quote := pricing.QuoteFor(&req.State.Cart, &req.State.Selection, req.Coupon)
	if !quote.Subtotal.IsPositive() {
		return nil, ErrEmptyCheckout
	}

	o := &Order{
		ID:             uuid.New().String(),
		SessionID:      req.SessionID,
		Groups:         req.State.Cart.Clone().Groups,
		Subtotal:       quote.Subtotal,
		DeliveryFee:    quote.DeliveryFee,
		Discount:       quote.Discount,
		Total:          quote.Total,
		CouponCode:     req.Coupon.Code,
		Status:         delivery.StatusConfirmed,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		// The guard is process-local: after a restart, or when two first
		// submissions race, the key can reach Create unseen and collide
		// with the unique index. The order that won the insert is the
		// answer either way.
		if req.IdempotencyKey != "" {
			if existing, lookupErr := s.orders.GetByIdempotencyKey(ctx, req.IdempotencyKey); lookupErr == nil {
				s.guard.Mark(req.IdempotencyKey)
				return existing, nil
			}
		}
		return nil, errors.Wrap(err, "create order")
	}

	if req.IdempotencyKey != "" {
		s.guard.Mark(req.IdempotencyKey)
	}
	return o, nil
}

// AdvanceStatus moves an order one step along the delivery progression. The
// update is a compare-and-set on the status read here, so a concurrent second
// click cannot advance the order twice.
func (s *Service) AdvanceStatus(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := o.Status.Next()
	if !ok {
		return nil, ErrTerminalStatus
	}

	changed, err := s.orders.UpdateStatus(ctx, id, o.Status, next)
	if err != nil {
		return nil, errors.Wrapf(err, "update status of order %s", id)
	}
	if !changed {
		return nil, ErrStatusConflict
	}

	o.Status = next
	return o, nil
}

// ListByView returns orders matching a delivery dashboard view name.
func (s *Service) ListByView(ctx context.Context, view string) ([]Order, error) {
	statuses, ok := delivery.DashboardViews[view]
	if !ok {
		return nil, errors.Wrapf(delivery.ErrUnknownStatus, "view %q", view)
	}
	return s.orders.ListByStatus(ctx, statuses)
}

// ListByStatus returns orders in any of the given statuses.
func (s *Service) ListByStatus(ctx context.Context, statuses []delivery.Status) ([]Order, error) {
	return s.orders.ListByStatus(ctx, statuses)
}

// Get returns a single order by ID.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}
