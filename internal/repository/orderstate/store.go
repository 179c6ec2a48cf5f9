package orderstate

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vibita-lite/internal/config"
	"github.com/Additional-Code/vibita-lite/internal/database"
	"github.com/Additional-Code/vibita-lite/internal/entity"
	"github.com/Additional-Code/vibita-lite/internal/redis"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/vibita-lite/repository/orderstate")

// Store persists the processed flag per (shop, order id). Every method is
// scoped by shop; rows of one shop are never visible to another.
type Store interface {
	// FindMany returns the stored rows among orderIDs. Ids without a row are omitted.
	FindMany(ctx context.Context, shop string, orderIDs []string) ([]entity.OrderState, error)
	// FindOne returns Unknown when no row exists.
	FindOne(ctx context.Context, shop, orderID string) (entity.ProcessedState, error)
	// Upsert sets the flag, creating the row if needed.
	Upsert(ctx context.Context, shop, orderID string, processed bool) error
	// Toggle atomically flips the flag (absent counts as false) and returns the new value.
	Toggle(ctx context.Context, shop, orderID string) (bool, error)
}

// Module provides the configured Store to Fx.
var Module = fx.Provide(NewStore)

// Params defines dependencies for constructing the Store.
type Params struct {
	fx.In

	Config config.Config
	Conns  *database.Connections
	Redis  *redis.Client
	Logger *zap.Logger
}

// NewStore selects the backend named by STATE_DRIVER.
func NewStore(p Params) (Store, error) {
	switch p.Config.State.Driver {
	case "sql":
		if !p.Conns.Enabled() {
			return nil, fmt.Errorf("sql state store: %w", database.ErrDisabled)
		}
		p.Logger.Info("order state store ready", zap.String("driver", "sql"), zap.String("dialect", p.Conns.Driver))
		return NewSQLRepository(p.Conns), nil
	case "redis":
		if !p.Redis.Enabled() {
			return nil, fmt.Errorf("redis state store: %w", redis.ErrDisabled)
		}
		p.Logger.Info("order state store ready", zap.String("driver", "redis"))
		return NewRedisRepository(p.Redis.Raw, p.Config.State.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported state driver: %s", p.Config.State.Driver)
	}
}
