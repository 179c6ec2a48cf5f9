// Package tenant resolves the shop a request acts for.
package tenant

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Additional-Code/vibita-lite/internal/config"
	"github.com/Additional-Code/vibita-lite/internal/presentation/http/response"
	"github.com/Additional-Code/vibita-lite/pkg/errorbank"
)

// HeaderShopDomain is the header the admin embed forwards the shop in.
const HeaderShopDomain = "X-Shopify-Shop-Domain"

const contextKey = "tenant.shop"

// Middleware rejects requests whose shop is missing or not installed and
// stores the normalised shop on the echo context.
func Middleware(cfg config.Shopify, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(HeaderShopDomain)
			if raw == "" {
				raw = c.QueryParam("shop")
			}

			shop := config.NormalizeShop(raw)
			if shop == "" {
				return response.New(c).WithError(errorbank.Unauthorized("shop is required")).Build()
			}
			if _, ok := cfg.Token(shop); !ok {
				logger.Warn("request for unknown shop rejected", zap.String("shop", shop), zap.String("path", c.Path()))
				return response.New(c).WithError(errorbank.Unauthorized("shop is not installed")).Build()
			}

			c.Set(contextKey, shop)
			return next(c)
		}
	}
}

// Shop returns the shop resolved by Middleware, or "" outside it.
func Shop(c echo.Context) string {
	shop, _ := c.Get(contextKey).(string)
	return shop
}
