package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Additional-Code/vibita-lite/internal/config"
	"github.com/Additional-Code/vibita-lite/pkg/errorbank"
)

// Module exposes the gRPC health server and lifecycle hooks to Fx.
var Module = fx.Module("grpc_server",
	fx.Provide(NewServer),
	fx.Invoke(Run),
)

// Server bundles the grpc server with its health registry.
type Server struct {
	GRPC   *grpc.Server
	Health *health.Server
}

// NewServer builds a gRPC server serving grpc.health.v1 with logging and
// error-mapping interceptors.
func NewServer(cfg config.Config, logger *zap.Logger) *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryInterceptor(logger)),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(cfg.Observability.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{GRPC: srv, Health: hs}
}

// UnaryInterceptor logs each call and converts AppErrors into status errors.
func UnaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)
		if err == nil {
			logger.Debug("grpc unary call finished", zap.String("method", info.FullMethod), zap.Duration("duration", duration))
			return resp, nil
		}

		logger.Warn("grpc unary call failed", zap.String("method", info.FullMethod), zap.Duration("duration", duration), zap.Error(err))
		if _, ok := status.FromError(err); ok {
			return resp, err
		}
		var appErr *errorbank.AppError
		if errors.As(err, &appErr) {
			return resp, status.Error(appErr.GRPCCode(), appErr.Message())
		}
		return resp, status.Error(errorbank.From(err).GRPCCode(), "internal error")
	}
}

// Run binds the server when GRPC_ENABLED is set and flips health to SERVING
// once listening.
func Run(lc fx.Lifecycle, cfg config.Config, server *Server, logger *zap.Logger) {
	if !cfg.GRPC.Enabled {
		logger.Info("grpc server disabled")
		return
	}

	addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	var listener net.Listener

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen grpc: %w", err)
			}
			listener = ln
			logger.Info("starting gRPC server", zap.String("addr", addr))
			server.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			server.Health.SetServingStatus(cfg.Observability.ServiceName, healthpb.HealthCheckResponse_SERVING)
			go func() {
				if err := server.GRPC.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
					logger.Error("grpc server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping gRPC server")
			server.Health.Shutdown()

			stopped := make(chan struct{})
			go func() {
				server.GRPC.GracefulStop()
				close(stopped)
			}()

			select {
			case <-ctx.Done():
				server.GRPC.Stop()
				return ctx.Err()
			case <-stopped:
				return nil
			}
		},
	})
}
