package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshfold/laundrokart/internal/domain/cart"
	"github.com/freshfold/laundrokart/internal/domain/delivery"
	"github.com/freshfold/laundrokart/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, session_id, groups, subtotal, delivery_fee, discount, total, coupon_code, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))`

	getOrderSQL = `SELECT id, session_id, groups, subtotal, delivery_fee, discount, total,
		coupon_code, status, COALESCE(idempotency_key, ''), created_at
		FROM orders WHERE id = $1`

	getOrderByIdemKeySQL = `SELECT id, session_id, groups, subtotal, delivery_fee, discount, total,
		coupon_code, status, COALESCE(idempotency_key, ''), created_at
		FROM orders WHERE idempotency_key = $1`

	listOrdersByStatusSQL = `SELECT id, session_id, groups, subtotal, delivery_fee, discount, total,
		coupon_code, status, COALESCE(idempotency_key, ''), created_at
		FROM orders WHERE status = ANY($1) ORDER BY created_at`

	updateOrderStatusSQL = `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The group snapshot is serialized to JSON for
// storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	groupsJSON, err := json.Marshal(o.Groups)
	if err != nil {
		return fmt.Errorf("marshaling order groups: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.SessionID, groupsJSON,
		o.Subtotal, o.DeliveryFee, o.Discount, o.Total,
		o.CouponCode, string(o.Status), o.IdempotencyKey,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order. Returns order.ErrNotFound when absent.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return r.collectOne(rows, id)
}

// GetByIdempotencyKey returns the order created with the given key.
// Returns order.ErrNotFound when absent.
func (r *OrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIdemKeySQL, key)
	if err != nil {
		return nil, fmt.Errorf("getting order by idempotency key: %w", err)
	}
	return r.collectOne(rows, key)
}

// ListByStatus returns orders in any of the given statuses, oldest first.
func (r *OrderRepository) ListByStatus(ctx context.Context, statuses []delivery.Status) ([]order.Order, error) {
	vals := make([]string, len(statuses))
	for i, s := range statuses {
		vals[i] = string(s)
	}

	rows, err := r.pool.Query(ctx, listOrdersByStatusSQL, vals)
	if err != nil {
		return nil, fmt.Errorf("listing orders by status: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus performs the compare-and-set status transition. It reports
// whether a row actually changed.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to delivery.Status) (bool, error) {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("updating status of order %q: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) collectOne(rows pgx.Rows, ref string) (*order.Order, error) {
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("collecting order %q: %w", ref, err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o          order.Order
		groupsJSON []byte
		status     string
	)
	err := row.Scan(
		&o.ID, &o.SessionID, &groupsJSON,
		&o.Subtotal, &o.DeliveryFee, &o.Discount, &o.Total,
		&o.CouponCode, &status, &o.IdempotencyKey, &o.CreatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}
	o.Status = delivery.Status(status)

	var groups []cart.Group
	if err := json.Unmarshal(groupsJSON, &groups); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling order groups: %w", err)
	}
	o.Groups = groups
	return o, nil
}
