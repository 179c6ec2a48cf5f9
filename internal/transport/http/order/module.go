package order

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vibita-lite/internal/config"
	service "github.com/Additional-Code/vibita-lite/internal/service/order"
	"github.com/Additional-Code/vibita-lite/internal/transport/http/tenant"
)

// Module wires the dashboard routes under /app.
var Module = fx.Options(
	fx.Provide(func(svc *service.Service) *Handler {
		return NewHandler(svc)
	}),
	fx.Invoke(func(e *echo.Echo, h *Handler, cfg config.Config, logger *zap.Logger) {
		Register(e.Group("/app", tenant.Middleware(cfg.Shopify, logger)), h)
	}),
)
