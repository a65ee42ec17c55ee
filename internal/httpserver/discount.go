package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/apparel_shop/internal/service"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

type DiscountHTTP struct {
	Svc *service.DiscountService
}

func (h *DiscountHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.create")

	var req transport.CreateDiscountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "create_discount_error", "invalid body", err)
	}

	d, err := h.Svc.Create(ctx, req)
	if err != nil {
		return writeError(c, l, "create_discount_error", err)
	}

	l.Info("create_discount_success", "discount_id", d.ID, "code", d.Code)
	return c.JSON(http.StatusCreated, transport.NewDiscountRead(d))
}

func (h *DiscountHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.list")

	page, size := pageParams(c)
	out, err := h.Svc.List(ctx, page, size)
	if err != nil {
		return writeError(c, l, "list_discounts_error", err)
	}
	return c.JSON(http.StatusOK, out)
}
