package orderstate

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vibita-lite/internal/config"
	"github.com/Additional-Code/vibita-lite/internal/messaging"
	ordersvc "github.com/Additional-Code/vibita-lite/internal/service/order"
	"github.com/Additional-Code/vibita-lite/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/vibita-lite/worker/orderstate")

// Module registers the order state audit handler.
var Module = fx.Module("worker_orderstate",
	fx.Provide(
		fx.Annotate(
			NewAuditHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewAuditHandler writes one audit log line per toggle event. Malformed
// events are logged and acknowledged so they do not block the partition.
func NewAuditHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	audit := logger.Named("audit")

	handler := func(ctx context.Context, msg messaging.Message) error {
		_, span := workerTracer.Start(ctx, "worker.orderstate.audit", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.Int64("messaging.offset", msg.Offset),
		))
		defer span.End()

		event, err := decodeEvent(msg.Value)
		if err != nil {
			audit.Error("discarding malformed order state event",
				zap.ByteString("key", msg.Key),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return nil
		}

		audit.Info("order state toggled",
			zap.String("shop", event.Shop),
			zap.String("order_id", event.OrderID),
			zap.Bool("processed", event.IsProcessed),
			zap.Time("toggled_at", event.ToggledAt),
			zap.Int64("offset", msg.Offset),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}

func decodeEvent(value []byte) (ordersvc.OrderStateToggledEvent, error) {
	var event ordersvc.OrderStateToggledEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return event, err
	}
	if event.Shop == "" || event.OrderID == "" {
		return event, fmt.Errorf("event without shop or order id")
	}
	return event, nil
}
