package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/optivem/eshop-backend/internal/domain/order"
)

const (
	orderColumns = `order_number, placed_at, sku, quantity, country,
		unit_price, subtotal, discount_rate, discount_amount, pre_tax_total,
		tax_rate, tax_amount, total, status, applied_coupon_code`

	createOrderSQL = `INSERT INTO orders (order_number, placed_at, sku, quantity, country,
		unit_price, subtotal, discount_rate, discount_amount, pre_tax_total,
		tax_rate, tax_amount, total, status, applied_coupon_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	findOrderByNumberSQL = `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	browseOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE order_number ILIKE '%' || $1 || '%'
		ORDER BY placed_at DESC`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE order_number = $1`
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

// Create persists a new order. Duplicate order numbers are rejected by the
// primary key constraint.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	var appliedCoupon *string
	if o.AppliedCouponCode != "" {
		appliedCoupon = &o.AppliedCouponCode
	}

	_, err := r.pool.Exec(ctx, createOrderSQL,
		o.Number, o.PlacedAt, o.SKU, int32(o.Quantity), o.Country,
		o.UnitPrice, o.Subtotal, o.DiscountRate, o.DiscountAmount, o.PreTaxTotal,
		o.TaxRate, o.TaxAmount, o.Total, string(o.Status), appliedCoupon,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.Number, err)
	}
	return nil
}

// FindByNumber looks up an order by its number.
// Returns *order.NotFoundError when no such order exists.
func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, findOrderByNumberSQL, number)
	if err != nil {
		return nil, fmt.Errorf("finding order %q: %w", number, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &order.NotFoundError{Number: number}
		}
		return nil, fmt.Errorf("finding order %q: %w", number, err)
	}
	return &o, nil
}

// Browse returns orders whose number contains the filter, case-insensitive,
// newest-first by placement timestamp. An empty filter matches all orders.
func (r *OrderRepository) Browse(ctx context.Context, filter string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, browseOrdersSQL, filter)
	if err != nil {
		return nil, fmt.Errorf("browsing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("browsing orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus persists a status transition for the given order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, number string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, number, string(status))
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", number, err)
	}
	if tag.RowsAffected() == 0 {
		return &order.NotFoundError{Number: number}
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o             order.Order
		placedAt      time.Time
		quantity      int32
		status        string
		appliedCoupon *string
	)
	err := row.Scan(
		&o.Number, &placedAt, &o.SKU, &quantity, &o.Country,
		&o.UnitPrice, &o.Subtotal, &o.DiscountRate, &o.DiscountAmount, &o.PreTaxTotal,
		&o.TaxRate, &o.TaxAmount, &o.Total, &status, &appliedCoupon,
	)
	o.PlacedAt = placedAt
	o.Quantity = int(quantity)
	o.Status = order.Status(status)
	if appliedCoupon != nil {
		o.AppliedCouponCode = *appliedCoupon
	}
	return o, err
}
