// Package api exposes the coupon and order operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/optivem/eshop-backend/internal/domain/coupon"
	"github.com/optivem/eshop-backend/internal/domain/order"
)

// CouponService is the coupon engine surface consumed by the HTTP layer.
type CouponService interface {
	Create(ctx context.Context, p coupon.CreateParams) (*coupon.Coupon, error)
	List(ctx context.Context) ([]coupon.Coupon, error)
}

// OrderService is the order engine surface consumed by the HTTP layer.
type OrderService interface {
	Place(ctx context.Context, p order.PlaceParams) (string, error)
	Get(ctx context.Context, number string) (*order.Order, error)
	Browse(ctx context.Context, filter string) ([]order.Order, error)
	Cancel(ctx context.Context, number string) error
}

// Handler routes API requests to the domain services.
type Handler struct {
	coupons CouponService
	orders  OrderService
	lg      *zap.Logger
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(coupons CouponService, orders OrderService, lg *zap.Logger) *Handler {
	return &Handler{
		coupons: coupons,
		orders:  orders,
		lg:      lg,
	}
}

// Routes registers all API endpoints on the given mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/coupons", h.createCoupon)
	mux.HandleFunc("GET /api/coupons", h.listCoupons)
	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders", h.browseOrders)
	mux.HandleFunc("GET /api/orders/{orderNumber}", h.getOrder)
	mux.HandleFunc("POST /api/orders/{orderNumber}/cancel", h.cancelOrder)
}

// decode reads the request body as JSON into v. Malformed bodies produce a
// 400 response; the caller should return immediately when ok is false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) (ok bool) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "malformed request body: " + err.Error(),
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// jsonDecimal serializes a decimal as a plain JSON number, preserving the
// exact digits produced by the decimal arithmetic.
type jsonDecimal struct {
	decimal.Decimal
}

func (d jsonDecimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}
