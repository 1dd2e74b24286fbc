package server

import (
	"shophub/internal/config"
	"shophub/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	Category     *handler.CategoryHandler
	Audit        *handler.AuditHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e)
	h.AdminOrder.RegisterRoutes(e, cfg)
	h.Category.RegisterRoutes(e, cfg)
	h.Audit.RegisterRoutes(e, cfg)
}
