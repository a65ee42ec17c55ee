package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	middleware "github.com/Skotchmaster/apparel_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/apparel_shop/pkg/middleware/csrf"
	"github.com/Skotchmaster/apparel_shop/pkg/metrics"
	"github.com/Skotchmaster/apparel_shop/pkg/ratelimit"
)

type Deps struct {
	CartHandler     *CartHTTP
	OrderHandler    *OrderHTTP
	DiscountHandler *DiscountHTTP

	JWTSecret     []byte
	AuthClient    middleware.Refresher
	SecureCookies bool

	// nil disables rate limiting of checkout and discount preview
	Limiter  *ratelimit.Limiter
	Gatherer prometheus.Gatherer
	Ready    func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "not ready"})
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)
	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = d.SecureCookies
	csrfMW := csrf.Middleware(csrfCfg)

	limited := []echo.MiddlewareFunc{}
	if d.Limiter != nil {
		limited = append(limited, d.Limiter.Middleware())
	}

	cart := e.Group("/cart", csrfMW, authMW.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PATCH("/items/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)
	cart.POST("/validate-discount", d.CartHandler.ValidateDiscount, limited...)
	cart.POST("/checkout", d.CartHandler.Checkout, limited...)

	orders := e.Group("/orders/me", csrfMW, authMW.RequireAuth)
	orders.GET("", d.OrderHandler.ListMine)
	orders.GET("/:id", d.OrderHandler.GetMine)
	orders.POST("/:id/cancel", d.OrderHandler.CancelMine)

	admin := e.Group("/admin", csrfMW, authMW.RequireAdmin)
	admin.GET("/orders", d.OrderHandler.List)
	admin.GET("/orders/:id", d.OrderHandler.Get)
	admin.PUT("/orders/:id/status", d.OrderHandler.UpdateStatus)
	admin.GET("/discounts", d.DiscountHandler.List)
	admin.POST("/discounts", d.DiscountHandler.Create)
}
