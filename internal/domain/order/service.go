package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/optivem/eshop-backend/internal/clock"
	"github.com/optivem/eshop-backend/internal/domain/validation"
)

// Cancellation is blocked on December 31 within this closed time-of-day
// interval, reckoned in UTC. Both endpoints are inclusive.
const (
	cancellationBlockedFrom = 22 * time.Hour
	cancellationBlockedTo   = 22*time.Hour + 30*time.Minute
)

// PricingSource resolves a product's unit price by SKU.
type PricingSource interface {
	ProductPrice(ctx context.Context, sku string) (decimal.Decimal, error)
}

// TaxSource resolves a country's tax rate.
type TaxSource interface {
	TaxRate(ctx context.Context, country string) (decimal.Decimal, error)
}

// Discounter resolves coupon discount rates and records coupon usage.
type Discounter interface {
	Discount(ctx context.Context, code string) (decimal.Decimal, error)
	RecordUsage(ctx context.Context, code string) error
}

// PlaceParams holds the input for placing an order.
type PlaceParams struct {
	SKU        string
	Quantity   int
	Country    string
	CouponCode string
}

// Service encapsulates order placement and lifecycle business logic.
type Service struct {
	pricing PricingSource
	taxes   TaxSource
	coupons Discounter
	orders  Repository
	clock   clock.Clock
	lg      *zap.Logger
}

// NewService creates an order Service with the required dependencies.
func NewService(
	pricing PricingSource,
	taxes TaxSource,
	coupons Discounter,
	orders Repository,
	clk clock.Clock,
	lg *zap.Logger,
) *Service {
	return &Service{
		pricing: pricing,
		taxes:   taxes,
		coupons: coupons,
		orders:  orders,
		clock:   clk,
		lg:      lg,
	}
}

// Place prices and persists a new order, returning its generated number.
//
// Resolution order is fixed: unit price, then discount, then tax rate. A
// failure in any step aborts the placement with nothing persisted. Coupon
// usage is recorded only after the order is durably stored, and a failure to
// record usage is logged rather than returned: the persisted order is the
// source of truth at that point.
func (s *Service) Place(ctx context.Context, p PlaceParams) (string, error) {
	if strings.TrimSpace(p.SKU) == "" {
		return "", validation.New("sku", "SKU must not be empty")
	}
	if p.Quantity <= 0 {
		return "", validation.New("quantity", "quantity must be positive")
	}
	if strings.TrimSpace(p.Country) == "" {
		return "", validation.New("country", "country must not be empty")
	}

	placedAt, err := s.clock.Now(ctx)
	if err != nil {
		return "", errors.Wrap(err, "resolve current time")
	}

	unitPrice, err := s.pricing.ProductPrice(ctx, p.SKU)
	if err != nil {
		return "", err
	}

	discountRate, err := s.coupons.Discount(ctx, p.CouponCode)
	if err != nil {
		return "", err
	}

	taxRate, err := s.taxes.TaxRate(ctx, p.Country)
	if err != nil {
		return "", err
	}

	// Exact decimal arithmetic throughout, no intermediate rounding.
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
	discountAmount := subtotal.Mul(discountRate)
	preTaxTotal := subtotal.Sub(discountAmount)
	taxAmount := preTaxTotal.Mul(taxRate)
	total := preTaxTotal.Add(taxAmount)

	// A zero-rate coupon is not recorded as applied, and its usage is not
	// counted.
	appliedCoupon := ""
	if discountRate.IsPositive() {
		appliedCoupon = p.CouponCode
	}

	o := &Order{
		Number:            generateOrderNumber(),
		PlacedAt:          placedAt,
		SKU:               p.SKU,
		Quantity:          p.Quantity,
		Country:           p.Country,
		UnitPrice:         unitPrice,
		Subtotal:          subtotal,
		DiscountRate:      discountRate,
		DiscountAmount:    discountAmount,
		PreTaxTotal:       preTaxTotal,
		TaxRate:           taxRate,
		TaxAmount:         taxAmount,
		Total:             total,
		Status:            StatusPlaced,
		AppliedCouponCode: appliedCoupon,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return "", errors.Wrapf(err, "create order %q", o.Number)
	}

	if appliedCoupon != "" {
		if err := s.coupons.RecordUsage(ctx, appliedCoupon); err != nil {
			s.lg.Warn("failed to record coupon usage after order placement",
				zap.String("order_number", o.Number),
				zap.String("coupon_code", appliedCoupon),
				zap.Error(err),
			)
		}
	}

	return o.Number, nil
}

// Get returns the full order detail for the given number.
func (s *Service) Get(ctx context.Context, number string) (*Order, error) {
	o, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Browse returns orders newest-first, optionally filtered by a
// case-insensitive substring of the order number.
func (s *Service) Browse(ctx context.Context, filter string) ([]Order, error) {
	orders, err := s.orders.Browse(ctx, strings.TrimSpace(filter))
	if err != nil {
		return nil, errors.Wrap(err, "browse orders")
	}
	return orders, nil
}

// Cancel transitions an order from placed to cancelled. An already-cancelled
// order fails with ErrAlreadyCancelled; cancellation during the December 31
// restricted window fails with ErrCancellationBlocked.
func (s *Service) Cancel(ctx context.Context, number string) error {
	if strings.TrimSpace(number) == "" {
		return validation.New("orderNumber", "order number must not be empty")
	}

	o, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return err
	}
	if o.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}

	now, err := s.clock.Now(ctx)
	if err != nil {
		return errors.Wrap(err, "resolve current time")
	}
	if inCancellationBlockedWindow(now) {
		return ErrCancellationBlocked
	}

	if err := s.orders.UpdateStatus(ctx, number, StatusCancelled); err != nil {
		return errors.Wrapf(err, "cancel order %q", number)
	}
	return nil
}

// inCancellationBlockedWindow reports whether the instant falls on December 31
// between 22:00:00 and 22:30:00 UTC inclusive.
func inCancellationBlockedWindow(t time.Time) bool {
	civil := t.UTC()
	if civil.Month() != time.December || civil.Day() != 31 {
		return false
	}
	tod := time.Duration(civil.Hour())*time.Hour +
		time.Duration(civil.Minute())*time.Minute +
		time.Duration(civil.Second())*time.Second +
		time.Duration(civil.Nanosecond())
	return tod >= cancellationBlockedFrom && tod <= cancellationBlockedTo
}

// generateOrderNumber produces a unique order number of the form
// ORD-<uppercase UUID>. Collisions are negligible; the store still rejects
// duplicates.
func generateOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.New().String())
}
