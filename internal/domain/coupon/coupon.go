// Package coupon implements promotional coupon management: creation with
// validity windows and usage caps, discount resolution, and usage tracking.
package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownCoupon is returned when a coupon code does not exist.
	ErrUnknownCoupon = errors.New("coupon code does not exist")
	// ErrNotYetValid is returned when a coupon is used before its valid-from instant.
	ErrNotYetValid = errors.New("coupon is not yet valid")
	// ErrExpired is returned when a coupon is used after its valid-to instant.
	ErrExpired = errors.New("coupon has expired")
	// ErrUsageLimitReached is returned when a coupon has exhausted its allowed uses.
	ErrUsageLimitReached = errors.New("coupon usage limit has been reached")
	// ErrDuplicateCode is returned when creating a coupon whose code already exists.
	ErrDuplicateCode = errors.New("coupon code already exists")
	// ErrWindowInPast is returned when a coupon is created with a validity
	// boundary that is not strictly in the future.
	ErrWindowInPast = errors.New("validity window must be in the future")
)

// Coupon is a promotional code granting a discount rate, bounded by an
// optional validity window and an optional usage cap. A nil UsageLimit means
// unlimited use.
type Coupon struct {
	Code         string
	DiscountRate decimal.Decimal
	ValidFrom    *time.Time
	ValidTo      *time.Time
	UsageLimit   *int
	UsedCount    int
}

// Repository defines persistence operations for coupons.
//
// IncrementUsage must be atomic at the store level: concurrent redemptions of
// the same code must not lose updates.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	Exists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, c *Coupon) error
	List(ctx context.Context) ([]Coupon, error)
	IncrementUsage(ctx context.Context, code string) error
}
