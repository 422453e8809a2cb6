package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optivem/eshop-backend/internal/domain/order"
)

// ERPClient resolves product unit prices from the ERP system.
type ERPClient struct {
	baseURL string
	client  *http.Client
}

var _ order.PricingSource = (*ERPClient)(nil)

// NewERPClient creates an ERPClient for the given base URL.
func NewERPClient(baseURL string, timeout time.Duration) *ERPClient {
	return &ERPClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

type productDetailsResponse struct {
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
}

// ProductPrice fetches the unit price for the given SKU. A 404 from the ERP
// maps to *order.UnknownProductError.
func (c *ERPClient) ProductPrice(ctx context.Context, sku string) (decimal.Decimal, error) {
	url := c.baseURL + "/api/products/" + sku

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, &UpstreamError{System: "erp", URL: url, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, &UpstreamError{System: "erp", URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return decimal.Zero, &order.UnknownProductError{SKU: sku}
	case resp.StatusCode != http.StatusOK:
		return decimal.Zero, &UpstreamError{System: "erp", URL: url, Status: resp.StatusCode}
	}

	var details productDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return decimal.Zero, &UpstreamError{System: "erp", URL: url, Err: err}
	}

	return details.Price, nil
}
