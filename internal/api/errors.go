package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/optivem/eshop-backend/internal/domain/coupon"
	"github.com/optivem/eshop-backend/internal/domain/order"
	"github.com/optivem/eshop-backend/internal/domain/validation"
	"github.com/optivem/eshop-backend/internal/gateway"
)

// errorResponse is the JSON error body shared by all endpoints.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeError maps domain errors to HTTP responses:
//
//	validation errors                 -> 400
//	duplicate coupon code             -> 409
//	order lookup miss                 -> 404
//	business rule violations and
//	unknown coupon/product/country
//	during placement                  -> 422
//	upstream failures                 -> 502
//
// Anything unrecognized is logged and reported as 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: vErr.Message,
			Field:   vErr.Field,
		})
		return
	}

	if errors.Is(err, coupon.ErrDuplicateCode) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Message: coupon.ErrDuplicateCode.Error(),
			Field:   "code",
		})
		return
	}

	var nfErr *order.NotFoundError
	if errors.As(err, &nfErr) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Message: nfErr.Error(),
		})
		return
	}

	if msg, field, ok := unprocessableMessage(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: msg,
			Field:   field,
		})
		return
	}

	var upErr *gateway.UpstreamError
	if errors.As(err, &upErr) {
		h.lg.Error("upstream failure", zap.String("system", upErr.System), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Code:    http.StatusBadGateway,
			Message: "external system unavailable: " + upErr.System,
		})
		return
	}

	h.lg.Error("unhandled error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
	})
}

// unprocessableMessage matches the expected business outcomes that map to a
// 422 response and returns the message and field tag to report.
func unprocessableMessage(err error) (msg, field string, ok bool) {
	switch {
	case errors.Is(err, coupon.ErrUnknownCoupon),
		errors.Is(err, coupon.ErrNotYetValid),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrUsageLimitReached):
		return couponErrMessage(err), "couponCode", true
	case errors.Is(err, coupon.ErrWindowInPast):
		return coupon.ErrWindowInPast.Error(), "", true
	case errors.Is(err, order.ErrAlreadyCancelled):
		return order.ErrAlreadyCancelled.Error(), "", true
	case errors.Is(err, order.ErrCancellationBlocked):
		return order.ErrCancellationBlocked.Error(), "", true
	}

	var upnErr *order.UnknownProductError
	if errors.As(err, &upnErr) {
		return upnErr.Error(), "sku", true
	}

	var ucErr *order.UnknownCountryError
	if errors.As(err, &ucErr) {
		return ucErr.Error(), "country", true
	}

	return "", "", false
}

func couponErrMessage(err error) string {
	for _, sentinel := range []error{
		coupon.ErrUnknownCoupon,
		coupon.ErrNotYetValid,
		coupon.ErrExpired,
		coupon.ErrUsageLimitReached,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
