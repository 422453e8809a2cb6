// Package clock abstracts the current-time source so that business rules
// depending on "now" (coupon validity windows, the cancellation window) can be
// driven by either the system clock or a remote time provider.
package clock

import (
	"context"
	"time"
)

// Clock returns the current instant. Implementations may perform I/O (the
// remote stub provider does), so Now takes a context and can fail.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// System reads the local wall clock. It never fails.
type System struct{}

// Now returns the current system time.
func (System) Now(_ context.Context) (time.Time, error) {
	return time.Now(), nil
}

// Fixed always returns the same instant. Intended for tests.
type Fixed struct {
	Time time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now(_ context.Context) (time.Time, error) {
	return f.Time, nil
}
