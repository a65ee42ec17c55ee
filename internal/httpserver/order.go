package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/apparel_shop/internal/service"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func orderPage(p *service.OrderPage) transport.Page[transport.OrderRead] {
	return transport.Page[transport.OrderRead]{
		Items:    transport.NewOrderReads(p.Orders),
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
}

func (h *OrderHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "list_orders_error", err)
	}

	page, size := pageParams(c)
	p, err := h.Svc.ListMine(ctx, userID, page, size)
	if err != nil {
		return writeError(c, l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orderPage(p))
}

func (h *OrderHTTP) GetMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_mine")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "get_order_error", err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "get_order_error", "invalid id", err)
	}

	o, err := h.Svc.GetMine(ctx, userID, id)
	if err != nil {
		return writeError(c, l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewOrderRead(o))
}

func (h *OrderHTTP) CancelMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_mine")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "cancel_order_error", err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "cancel_order_error", "invalid id", err)
	}

	o, err := h.Svc.CancelMine(ctx, userID, id)
	if err != nil {
		return writeError(c, l, "cancel_order_error", err)
	}

	l.Info("cancel_order_success", "order_id", o.ID)
	return c.JSON(http.StatusOK, transport.NewOrderRead(o))
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.admin_list")

	page, size := pageParams(c)
	p, err := h.Svc.ListAll(ctx, c.QueryParam("status"), page, size)
	if err != nil {
		return writeError(c, l, "admin_list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orderPage(p))
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.admin_get")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "admin_get_order_error", "invalid id", err)
	}

	o, err := h.Svc.Get(ctx, id)
	if err != nil {
		return writeError(c, l, "admin_get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewOrderRead(o))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.admin_update_status")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "update_status_error", "invalid id", err)
	}
	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "update_status_error", "invalid body", err)
	}

	o, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return writeError(c, l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", o.ID, "status", string(o.Status))
	return c.JSON(http.StatusOK, transport.NewOrderRead(o))
}
