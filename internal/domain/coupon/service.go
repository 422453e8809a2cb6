package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/optivem/eshop-backend/internal/clock"
	"github.com/optivem/eshop-backend/internal/domain/validation"
)

var one = decimal.NewFromInt(1)

// CreateParams holds the input for creating a coupon. ValidFrom, ValidTo and
// UsageLimit are optional; nil UsageLimit means unlimited use.
type CreateParams struct {
	Code         string
	DiscountRate decimal.Decimal
	ValidFrom    *time.Time
	ValidTo      *time.Time
	UsageLimit   *int
}

// Service encapsulates coupon business logic.
type Service struct {
	repo  Repository
	clock clock.Clock
}

// NewService creates a coupon Service.
func NewService(repo Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, clock: clk}
}

// Create validates and persists a new coupon with a zero used count.
//
// The code must be non-blank and not already present. The discount rate must
// be in (0, 1]. When both validity boundaries are set, valid-to must not
// precede valid-from, and each boundary must be strictly in the future.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Coupon, error) {
	code := strings.TrimSpace(p.Code)
	if code == "" {
		return nil, validation.New("code", "coupon code must not be blank")
	}
	if !p.DiscountRate.IsPositive() || p.DiscountRate.GreaterThan(one) {
		return nil, validation.New("discountRate", "discount rate must be greater than 0 and at most 1")
	}
	if p.ValidFrom != nil && p.ValidTo != nil && p.ValidTo.Before(*p.ValidFrom) {
		return nil, validation.New("validTo", "valid-to must not precede valid-from")
	}
	if p.UsageLimit != nil && *p.UsageLimit < 0 {
		return nil, validation.New("usageLimit", "usage limit must not be negative")
	}

	now, err := s.clock.Now(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "resolve current time")
	}
	if p.ValidFrom != nil && !p.ValidFrom.After(now) {
		return nil, errors.Wrap(ErrWindowInPast, "validFrom")
	}
	if p.ValidTo != nil && !p.ValidTo.After(now) {
		return nil, errors.Wrap(ErrWindowInPast, "validTo")
	}

	exists, err := s.repo.Exists(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "check coupon existence")
	}
	if exists {
		return nil, ErrDuplicateCode
	}

	c := &Coupon{
		Code:         code,
		DiscountRate: p.DiscountRate,
		ValidFrom:    p.ValidFrom,
		ValidTo:      p.ValidTo,
		UsageLimit:   p.UsageLimit,
		UsedCount:    0,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, errors.Wrapf(err, "create coupon %q", code)
	}
	return c, nil
}

// Discount resolves the discount rate for the given coupon code at the
// current instant. A blank code means no coupon was requested and yields a
// zero rate without error.
//
// Discount is read-only: usage is recorded separately via RecordUsage, only
// after the order has been durably persisted.
func (s *Service) Discount(ctx context.Context, code string) (decimal.Decimal, error) {
	if strings.TrimSpace(code) == "" {
		return decimal.Zero, nil
	}

	c, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrUnknownCoupon) {
			return decimal.Zero, ErrUnknownCoupon
		}
		return decimal.Zero, errors.Wrapf(err, "find coupon %q", code)
	}

	now, err := s.clock.Now(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "resolve current time")
	}

	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return decimal.Zero, ErrNotYetValid
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return decimal.Zero, ErrExpired
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return decimal.Zero, ErrUsageLimitReached
	}

	return c.DiscountRate, nil
}

// RecordUsage increments the used count for the given code. It is best
// effort: when the coupon no longer exists the increment is a silent no-op,
// since a missing coupon must not fail an already-placed order. The limit was
// checked by Discount before the order was priced; no upper bound is enforced
// here.
func (s *Service) RecordUsage(ctx context.Context, code string) error {
	if err := s.repo.IncrementUsage(ctx, code); err != nil {
		return errors.Wrapf(err, "increment usage for coupon %q", code)
	}
	return nil
}

// List returns all coupons. Ordering is unspecified at this layer.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	return coupons, nil
}
