package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/apparel_shop/internal/service"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

type CartHTTP struct {
	Svc         *service.CartService
	CheckoutSvc *service.CheckoutService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "get_cart_error", err)
	}

	view, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return writeError(c, l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "add_item_error", err)
	}

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "add_item_error", "invalid body", err)
	}
	if req.ProductVariantID == 0 {
		return badRequest(c, l, "add_item_error", "product_variant_id required", nil)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.Svc.AddItem(ctx, userID, req.ProductVariantID, req.Quantity)
	if err != nil {
		return writeError(c, l, "add_item_error", err)
	}

	l.Info("add_item_success", "variant_id", req.ProductVariantID, "quantity", req.Quantity)
	return c.JSON(http.StatusCreated, view)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "update_item_error", err)
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "update_item_error", "invalid id", err)
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "update_item_error", "invalid body", err)
	}

	view, err := h.Svc.UpdateItem(ctx, userID, itemID, req.Quantity)
	if err != nil {
		return writeError(c, l, "update_item_error", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "remove_item_error", err)
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "remove_item_error", "invalid id", err)
	}

	view, err := h.Svc.RemoveItem(ctx, userID, itemID)
	if err != nil {
		return writeError(c, l, "remove_item_error", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) ValidateDiscount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.validate_discount")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "validate_discount_error", err)
	}

	var req transport.ValidateDiscountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "validate_discount_error", "invalid body", err)
	}
	if req.DiscountCode == "" {
		return badRequest(c, l, "validate_discount_error", "discount_code required", nil)
	}

	preview, err := h.Svc.PreviewDiscount(ctx, userID, req.DiscountCode, req.CartItemIDs)
	if err != nil {
		return writeError(c, l, "validate_discount_error", err)
	}
	return c.JSON(http.StatusOK, preview)
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "checkout_error", err)
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "checkout_error", "invalid body", err)
	}
	if req.ShippingAddressID == 0 {
		return badRequest(c, l, "checkout_error", "shipping_address_id required", nil)
	}

	order, err := h.CheckoutSvc.Checkout(ctx, userID, service.CheckoutInputFrom(req))
	if err != nil {
		return writeError(c, l, "checkout_error", err)
	}

	l.Info("checkout_success", "order_id", order.ID, "code", order.Code)
	return c.JSON(http.StatusCreated, transport.NewOrderRead(order))
}
