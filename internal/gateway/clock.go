package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/optivem/eshop-backend/internal/clock"
)

// ClockClient reads the current instant from the remote stub time provider.
// It is selected instead of the system clock when the application runs in
// stub mode, so tests can travel in time deterministically.
type ClockClient struct {
	baseURL string
	client  *http.Client
}

var _ clock.Clock = (*ClockClient)(nil)

// NewClockClient creates a ClockClient for the given base URL.
func NewClockClient(baseURL string, timeout time.Duration) *ClockClient {
	return &ClockClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

type getTimeResponse struct {
	Time time.Time `json:"time"`
}

// Now fetches the current instant from the remote provider.
func (c *ClockClient) Now(ctx context.Context) (time.Time, error) {
	url := c.baseURL + "/api/time"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return time.Time{}, &UpstreamError{System: "clock", URL: url, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return time.Time{}, &UpstreamError{System: "clock", URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, &UpstreamError{System: "clock", URL: url, Status: resp.StatusCode}
	}

	var body getTimeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return time.Time{}, &UpstreamError{System: "clock", URL: url, Err: err}
	}

	return body.Time, nil
}
