// Package gateway contains HTTP clients for the external systems consulted
// during order placement: the ERP pricing source, the tax rate source, and
// the remote stub time provider.
//
// Every client performs a single bounded-timeout attempt; there are no
// automatic retries. Unreachable upstreams and unexpected statuses surface as
// *UpstreamError.
package gateway

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds every upstream call, matching the slowest acceptable
// external dependency.
const DefaultTimeout = 10 * time.Second

// UpstreamError indicates an external source was unreachable, timed out, or
// returned an unexpected status.
type UpstreamError struct {
	System string
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s upstream failed: %s: %v", e.System, e.URL, e.Err)
	}
	return fmt.Sprintf("%s upstream returned status %d: %s", e.System, e.Status, e.URL)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// newHTTPClient builds an instrumented HTTP client with the given timeout.
// A non-positive timeout falls back to DefaultTimeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
