package api

import (
	"net/http"
	"time"

	"github.com/optivem/eshop-backend/internal/domain/order"
	"github.com/optivem/eshop-backend/internal/domain/validation"
)

type placeOrderRequest struct {
	SKU        string `json:"sku"`
	Quantity   int    `json:"quantity"`
	Country    string `json:"country"`
	CouponCode string `json:"couponCode"`
}

type placeOrderResponse struct {
	OrderNumber string `json:"orderNumber"`
}

type orderDetailResponse struct {
	OrderNumber       string       `json:"orderNumber"`
	OrderTimestamp    time.Time    `json:"orderTimestamp"`
	SKU               string       `json:"sku"`
	Quantity          int          `json:"quantity"`
	Country           string       `json:"country"`
	UnitPrice         jsonDecimal  `json:"unitPrice"`
	Subtotal          jsonDecimal  `json:"subtotal"`
	DiscountRate      jsonDecimal  `json:"discountRate"`
	DiscountAmount    jsonDecimal  `json:"discountAmount"`
	PreTaxTotal       jsonDecimal  `json:"preTaxTotal"`
	TaxRate           jsonDecimal  `json:"taxRate"`
	TaxAmount         jsonDecimal  `json:"taxAmount"`
	TotalPrice        jsonDecimal  `json:"totalPrice"`
	Status            order.Status `json:"status"`
	AppliedCouponCode string       `json:"appliedCouponCode,omitempty"`
}

type orderSummaryResponse struct {
	OrderNumber       string       `json:"orderNumber"`
	OrderTimestamp    time.Time    `json:"orderTimestamp"`
	SKU               string       `json:"sku"`
	Quantity          int          `json:"quantity"`
	Country           string       `json:"country"`
	TotalPrice        jsonDecimal  `json:"totalPrice"`
	Status            order.Status `json:"status"`
	AppliedCouponCode string       `json:"appliedCouponCode,omitempty"`
}

type browseOrdersResponse struct {
	Orders []orderSummaryResponse `json:"orders"`
}

// placeOrder handles POST /api/orders.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	number, err := h.orders.Place(r.Context(), order.PlaceParams{
		SKU:        req.SKU,
		Quantity:   req.Quantity,
		Country:    req.Country,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{OrderNumber: number})
}

// getOrder handles GET /api/orders/{orderNumber}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("orderNumber")

	o, err := h.orders.Get(r.Context(), number)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderDetailResponse{
		OrderNumber:       o.Number,
		OrderTimestamp:    o.PlacedAt,
		SKU:               o.SKU,
		Quantity:          o.Quantity,
		Country:           o.Country,
		UnitPrice:         jsonDecimal{o.UnitPrice},
		Subtotal:          jsonDecimal{o.Subtotal},
		DiscountRate:      jsonDecimal{o.DiscountRate},
		DiscountAmount:    jsonDecimal{o.DiscountAmount},
		PreTaxTotal:       jsonDecimal{o.PreTaxTotal},
		TaxRate:           jsonDecimal{o.TaxRate},
		TaxAmount:         jsonDecimal{o.TaxAmount},
		TotalPrice:        jsonDecimal{o.Total},
		Status:            o.Status,
		AppliedCouponCode: o.AppliedCouponCode,
	})
}

// browseOrders handles GET /api/orders with an optional orderNumber
// substring filter. Results are newest-first.
func (h *Handler) browseOrders(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("orderNumber")

	orders, err := h.orders.Browse(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]orderSummaryResponse, len(orders))
	for i, o := range orders {
		items[i] = orderSummaryResponse{
			OrderNumber:       o.Number,
			OrderTimestamp:    o.PlacedAt,
			SKU:               o.SKU,
			Quantity:          o.Quantity,
			Country:           o.Country,
			TotalPrice:        jsonDecimal{o.Total},
			Status:            o.Status,
			AppliedCouponCode: o.AppliedCouponCode,
		}
	}
	writeJSON(w, http.StatusOK, browseOrdersResponse{Orders: items})
}

// cancelOrder handles POST /api/orders/{orderNumber}/cancel. Success is 204
// No Content.
func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("orderNumber")
	if number == "" {
		h.writeError(w, validation.New("orderNumber", "order number must not be empty"))
		return
	}

	if err := h.orders.Cancel(r.Context(), number); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
