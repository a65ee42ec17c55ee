package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/apparel_shop/internal/discount"
	"github.com/Skotchmaster/apparel_shop/internal/service"
)

type errorResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason,omitempty"`
	Product   string `json:"product,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

var reasons = []struct {
	err    error
	reason string
}{
	{service.ErrInvalidShippingTarget, "invalid_shipping_target"},
	{service.ErrEmptySelection, "empty_selection"},
	{service.ErrInsufficientStock, "insufficient_stock"},
	{service.ErrProductUnavailable, "product_unavailable"},
	{service.ErrRetryableConflict, "retryable_conflict"},
	{service.ErrIllegalTransition, "illegal_transition"},
	{service.ErrDiscountExists, "discount_exists"},
}

func reasonOf(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ""
}

func classify(err error) (int, errorResponse) {
	var (
		rej  *discount.RejectedError
		perr *service.ProductError
	)
	switch {
	case errors.As(err, &rej):
		status := http.StatusBadRequest
		if rej.Reason == discount.ReasonInvalidCode {
			status = http.StatusNotFound
		}
		return status, errorResponse{Error: rej.Error(), Reason: string(rej.Reason)}
	case errors.As(err, &perr):
		status := http.StatusBadRequest
		if perr.Retryable {
			status = http.StatusConflict
		}
		return status, errorResponse{Error: perr.Error(), Reason: reasonOf(perr.Err), Product: perr.Product, Retryable: perr.Retryable}
	case errors.Is(err, service.ErrRetryableConflict):
		return http.StatusConflict, errorResponse{Error: err.Error(), Reason: reasonOf(err), Retryable: true}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Reason: reasonOf(err)}
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, errorResponse{Error: err.Error(), Reason: reasonOf(err)}
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Reason: reasonOf(err)}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal error"}
}

func writeError(c echo.Context, l *slog.Logger, event string, err error) error {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", body.Reason, "error", err)
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, l *slog.Logger, event, msg string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", msg, "error", err)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func unauthorized(c echo.Context, l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusUnauthorized, "error", err)
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}
