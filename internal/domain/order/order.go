// Package order implements order placement pricing, lookup, and lifecycle
// management under the cancellation-window business rule.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. The only transition is
// StatusPlaced -> StatusCancelled.
type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusCancelled Status = "CANCELLED"
)

var (
	// ErrAlreadyCancelled is returned when cancelling an order that has
	// already been cancelled. Repeated cancellation is an error, not a no-op.
	ErrAlreadyCancelled = errors.New("order has already been cancelled")
	// ErrCancellationBlocked is returned when cancellation is attempted
	// during the restricted December 31 window.
	ErrCancellationBlocked = errors.New("order cancellation is not allowed on December 31st between 22:00 and 22:30")
)

// NotFoundError indicates the requested order does not exist.
type NotFoundError struct {
	Number string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %s does not exist", e.Number)
}

// UnknownProductError indicates the pricing source has no product for the SKU.
type UnknownProductError struct {
	SKU string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("product does not exist for SKU %s", e.SKU)
}

// UnknownCountryError indicates the tax source has no rate for the country.
type UnknownCountryError struct {
	Country string
}

func (e *UnknownCountryError) Error() string {
	return fmt.Sprintf("country does not exist: %s", e.Country)
}

// Order is a single-line purchase record with its full monetary breakdown.
// All monetary fields are exact decimals; no floating-point arithmetic is
// involved at any point.
type Order struct {
	Number            string
	PlacedAt          time.Time
	SKU               string
	Quantity          int
	Country           string
	UnitPrice         decimal.Decimal
	Subtotal          decimal.Decimal
	DiscountRate      decimal.Decimal
	DiscountAmount    decimal.Decimal
	PreTaxTotal       decimal.Decimal
	TaxRate           decimal.Decimal
	TaxAmount         decimal.Decimal
	Total             decimal.Decimal
	Status            Status
	AppliedCouponCode string
}

// Repository defines persistence operations for orders.
//
// Create must reject duplicate order numbers. Browse performs a
// case-insensitive substring match on the order number and returns results
// newest-first by placement timestamp; an empty filter matches everything.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByNumber(ctx context.Context, number string) (*Order, error)
	Browse(ctx context.Context, filter string) ([]Order, error)
	UpdateStatus(ctx context.Context, number string, status Status) error
}
