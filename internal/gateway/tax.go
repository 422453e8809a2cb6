package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optivem/eshop-backend/internal/domain/order"
)

// TaxClient resolves country tax rates from the tax system.
type TaxClient struct {
	baseURL string
	client  *http.Client
}

var _ order.TaxSource = (*TaxClient)(nil)

// NewTaxClient creates a TaxClient for the given base URL.
func NewTaxClient(baseURL string, timeout time.Duration) *TaxClient {
	return &TaxClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

type taxDetailsResponse struct {
	Country string          `json:"country"`
	TaxRate decimal.Decimal `json:"taxRate"`
}

// TaxRate fetches the tax rate for the given country code. A 404 from the
// tax system maps to *order.UnknownCountryError.
func (c *TaxClient) TaxRate(ctx context.Context, country string) (decimal.Decimal, error) {
	url := c.baseURL + "/api/countries/" + country

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, &UpstreamError{System: "tax", URL: url, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, &UpstreamError{System: "tax", URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return decimal.Zero, &order.UnknownCountryError{Country: country}
	case resp.StatusCode != http.StatusOK:
		return decimal.Zero, &UpstreamError{System: "tax", URL: url, Status: resp.StatusCode}
	}

	var details taxDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return decimal.Zero, &UpstreamError{System: "tax", URL: url, Err: err}
	}

	return details.TaxRate, nil
}
