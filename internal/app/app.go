package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/vibita-lite/internal/config"
	"github.com/Additional-Code/vibita-lite/internal/database"
	"github.com/Additional-Code/vibita-lite/internal/logger"
	"github.com/Additional-Code/vibita-lite/internal/messaging"
	"github.com/Additional-Code/vibita-lite/internal/observability"
	"github.com/Additional-Code/vibita-lite/internal/redis"
	"github.com/Additional-Code/vibita-lite/internal/repository/orderstate"
	grpcserver "github.com/Additional-Code/vibita-lite/internal/server/grpc"
	httpserver "github.com/Additional-Code/vibita-lite/internal/server/http"
	serviceorder "github.com/Additional-Code/vibita-lite/internal/service/order"
	"github.com/Additional-Code/vibita-lite/internal/shopify"
	transporthttp "github.com/Additional-Code/vibita-lite/internal/transport/http"
	"github.com/Additional-Code/vibita-lite/internal/worker"
	workerorderstate "github.com/Additional-Code/vibita-lite/internal/worker/orderstate"
)

// Storage provides configuration, logging and the selected state store.
var Storage = fx.Options(
	config.Module,
	logger.Module,
	database.Module,
	redis.Module,
	orderstate.Module,
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	Storage,
	messaging.Module,
	observability.Module,
	shopify.Module,
	serviceorder.Module,
)

// HTTP wires the dashboard transport and the health servers on top of Core.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background consumption of order state events.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorderstate.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
