package order

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vibita-lite/internal/config"
	"github.com/Additional-Code/vibita-lite/internal/messaging"
	"github.com/Additional-Code/vibita-lite/internal/observability"
	"github.com/Additional-Code/vibita-lite/internal/repository/orderstate"
	"github.com/Additional-Code/vibita-lite/internal/shopify"
)

// Module provides the order reconciler to Fx.
var Module = fx.Provide(NewService)

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Source    *shopify.Client
	Store     orderstate.Store
	Publisher messaging.Client
	Metrics   *observability.Metrics `optional:"true"`
	Config    config.Config
	Logger    *zap.Logger
}

// NewService wires a Service from configuration.
func NewService(p Params) *Service {
	return New(p.Source, p.Store, p.Publisher, p.Metrics, p.Logger, Options{
		PageSize:        p.Config.Orders.PageSize,
		MaxPageSize:     p.Config.Orders.MaxPageSize,
		ExportLimit:     p.Config.Orders.ExportLimit,
		VerifyOwnership: p.Config.Orders.VerifyOwnership,
		WriteTimeout:    p.Config.Orders.WriteTimeout,
	})
}
