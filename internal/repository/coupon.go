package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/optivem/eshop-backend/internal/domain/coupon"
)

const (
	findCouponByCodeSQL = `SELECT code, discount_rate, valid_from, valid_to, usage_limit, used_count
		FROM coupons WHERE code = $1`

	couponExistsSQL = `SELECT EXISTS(SELECT 1 FROM coupons WHERE code = $1)`

	createCouponSQL = `INSERT INTO coupons (code, discount_rate, valid_from, valid_to, usage_limit, used_count)
		VALUES ($1, $2, $3, $4, $5, $6)`

	listCouponsSQL = `SELECT code, discount_rate, valid_from, valid_to, usage_limit, used_count
		FROM coupons ORDER BY code`

	// Store-side read-modify-write: concurrent redemptions of the same code
	// never lose an increment.
	incrementCouponUsageSQL = `UPDATE coupons SET used_count = used_count + 1 WHERE code = $1`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a coupon by its code.
// Returns coupon.ErrUnknownCoupon when no such coupon exists.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, findCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrUnknownCoupon
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &c, nil
}

// Exists reports whether a coupon with the given code is already present.
func (r *CouponRepository) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, couponExistsSQL, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking coupon existence for %q: %w", code, err)
	}
	return exists, nil
}

// Create persists a new coupon. Duplicate codes are rejected by the primary
// key constraint.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	var limit *int32
	if c.UsageLimit != nil {
		v := int32(*c.UsageLimit)
		limit = &v
	}

	_, err := r.pool.Exec(ctx, createCouponSQL,
		c.Code, c.DiscountRate, c.ValidFrom, c.ValidTo, limit, int32(c.UsedCount),
	)
	if err != nil {
		return fmt.Errorf("creating coupon %q: %w", c.Code, err)
	}
	return nil
}

// List returns all coupons ordered by code.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}

	coupons, err := pgx.CollectRows(rows, scanCoupon)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return coupons, nil
}

// IncrementUsage atomically increments the used count for the given code.
// A missing coupon affects zero rows, which is the documented no-op.
func (r *CouponRepository) IncrementUsage(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, incrementCouponUsageSQL, code)
	if err != nil {
		return fmt.Errorf("incrementing usage for coupon %q: %w", code, err)
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c         coupon.Coupon
		rate      decimal.Decimal
		validFrom *time.Time
		validTo   *time.Time
		limit     *int32
		usedCount int32
	)
	err := row.Scan(&c.Code, &rate, &validFrom, &validTo, &limit, &usedCount)
	c.DiscountRate = rate
	c.ValidFrom = validFrom
	c.ValidTo = validTo
	if limit != nil {
		v := int(*limit)
		c.UsageLimit = &v
	}
	c.UsedCount = int(usedCount)
	return c, err
}
