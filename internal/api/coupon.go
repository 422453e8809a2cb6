package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optivem/eshop-backend/internal/domain/coupon"
)

type createCouponRequest struct {
	Code         string          `json:"code"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	ValidFrom    *time.Time      `json:"validFrom"`
	ValidTo      *time.Time      `json:"validTo"`
	UsageLimit   *int            `json:"usageLimit"`
}

type couponResponse struct {
	Code         string      `json:"code"`
	DiscountRate jsonDecimal `json:"discountRate"`
	ValidFrom    *time.Time  `json:"validFrom,omitempty"`
	ValidTo      *time.Time  `json:"validTo,omitempty"`
	UsageLimit   *int        `json:"usageLimit,omitempty"`
	UsedCount    int         `json:"usedCount"`
}

type browseCouponsResponse struct {
	Coupons []couponResponse `json:"coupons"`
}

// createCoupon handles POST /api/coupons. Success is 204 No Content.
func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if !h.decode(w, r, &req) {
		return
	}

	_, err := h.coupons.Create(r.Context(), coupon.CreateParams{
		Code:         req.Code,
		DiscountRate: req.DiscountRate,
		ValidFrom:    req.ValidFrom,
		ValidTo:      req.ValidTo,
		UsageLimit:   req.UsageLimit,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listCoupons handles GET /api/coupons.
func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]couponResponse, len(coupons))
	for i, c := range coupons {
		items[i] = couponResponse{
			Code:         c.Code,
			DiscountRate: jsonDecimal{c.DiscountRate},
			ValidFrom:    c.ValidFrom,
			ValidTo:      c.ValidTo,
			UsageLimit:   c.UsageLimit,
			UsedCount:    c.UsedCount,
		}
	}
	writeJSON(w, http.StatusOK, browseCouponsResponse{Coupons: items})
}
