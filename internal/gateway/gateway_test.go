package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optivem/eshop-backend/internal/domain/order"
)

func TestERPClient_ProductPrice(t *testing.T) {
	t.Run("resolves price by sku", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/products/ABC", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sku":"ABC","price":50.00}`))
		}))
		defer srv.Close()

		price, err := NewERPClient(srv.URL, time.Second).ProductPrice(context.Background(), "ABC")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("50.00").Equal(price))
	})

	t.Run("404 means unknown product", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewERPClient(srv.URL, time.Second).ProductPrice(context.Background(), "NOPE")

		var pErr *order.UnknownProductError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, "NOPE", pErr.SKU)
	})

	t.Run("server error is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewERPClient(srv.URL, time.Second).ProductPrice(context.Background(), "ABC")

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "erp", upErr.System)
		assert.Equal(t, http.StatusInternalServerError, upErr.Status)
	})

	t.Run("unreachable host is an upstream error", func(t *testing.T) {
		_, err := NewERPClient("http://127.0.0.1:1", time.Second).ProductPrice(context.Background(), "ABC")

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "erp", upErr.System)
		assert.Error(t, errors.Unwrap(err))
	})

	t.Run("garbled body is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := NewERPClient(srv.URL, time.Second).ProductPrice(context.Background(), "ABC")

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
	})
}

func TestTaxClient_TaxRate(t *testing.T) {
	t.Run("resolves rate by country", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/countries/DE", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"country":"DE","taxRate":0.19}`))
		}))
		defer srv.Close()

		rate, err := NewTaxClient(srv.URL, time.Second).TaxRate(context.Background(), "DE")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("0.19").Equal(rate))
	})

	t.Run("404 means unknown country", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewTaxClient(srv.URL, time.Second).TaxRate(context.Background(), "XX")

		var cErr *order.UnknownCountryError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, "XX", cErr.Country)
	})

	t.Run("server error is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewTaxClient(srv.URL, time.Second).TaxRate(context.Background(), "DE")

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "tax", upErr.System)
	})
}

func TestClockClient_Now(t *testing.T) {
	t.Run("reads remote instant", func(t *testing.T) {
		want := time.Date(2025, 12, 31, 22, 15, 0, 0, time.UTC)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/time", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"time":"2025-12-31T22:15:00Z"}`))
		}))
		defer srv.Close()

		got, err := NewClockClient(srv.URL, time.Second).Now(context.Background())
		require.NoError(t, err)
		assert.True(t, want.Equal(got))
	})

	t.Run("server error is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewClockClient(srv.URL, time.Second).Now(context.Background())

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "clock", upErr.System)
	})

	t.Run("context cancellation aborts the call", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := NewClockClient(srv.URL, time.Second).Now(ctx)

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestUpstreamError_Error(t *testing.T) {
	withStatus := &UpstreamError{System: "erp", URL: "http://erp/api/products/ABC", Status: 500}
	assert.Contains(t, withStatus.Error(), "erp")
	assert.Contains(t, withStatus.Error(), "500")

	withErr := &UpstreamError{System: "tax", URL: "http://tax/api/countries/DE", Err: errors.New("dial refused")}
	assert.Contains(t, withErr.Error(), "dial refused")
}
