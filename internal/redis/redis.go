package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vibita-lite/internal/config"
)

// ErrDisabled is returned when redis is requested but not configured.
var ErrDisabled = errors.New("redis disabled")

// Client holds the shared redis connection; Raw is nil when redis is disabled.
type Client struct {
	Raw *goredis.Client
}

// Module provides the redis client to the Fx graph.
var Module = fx.Provide(New)

// New opens the redis client when the redis state store is selected.
func New(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	raw := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := raw.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis: %w", err)
			}
			logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("closing redis client")
			return raw.Close()
		},
	})

	return &Client{Raw: raw}, nil
}

// Enabled reports whether a connection was configured.
func (c *Client) Enabled() bool {
	return c != nil && c.Raw != nil
}
