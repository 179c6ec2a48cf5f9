package orderstate

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/vibita-lite/internal/entity"
)

// toggleScript flips one hash field server-side; the read and the write
// cannot interleave with another client.
var toggleScript = goredis.NewScript(`
local current = redis.call('HGET', KEYS[1], ARGV[1])
local next = 1
if current == '1' then
  next = 0
end
redis.call('HSET', KEYS[1], ARGV[1], next)
return next
`)

// RedisRepository keeps one hash per shop: field = order id, value = "1"/"0".
type RedisRepository struct {
	client goredis.UniversalClient
	prefix string
}

// NewRedisRepository builds a store on client with keys "<prefix><shop>".
func NewRedisRepository(client goredis.UniversalClient, prefix string) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(shop string) string {
	return r.prefix + shop
}

// FindMany reads all requested fields with one HMGET.
func (r *RedisRepository) FindMany(ctx context.Context, shop string, orderIDs []string) ([]entity.OrderState, error) {
	ctx, span := repoTracer.Start(ctx, "OrderStateRedis.FindMany", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.Int("order.count", len(orderIDs)),
	))
	defer span.End()

	if len(orderIDs) == 0 {
		return nil, nil
	}

	values, err := r.client.HMGet(ctx, r.key(shop), orderIDs...).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hmget failed")
		return nil, err
	}

	rows := make([]entity.OrderState, 0, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		processed, err := parseFlag(v)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		rows = append(rows, entity.OrderState{Shop: shop, OrderID: orderIDs[i], IsProcessed: processed})
	}
	return rows, nil
}

// FindOne returns Unknown for a missing field.
func (r *RedisRepository) FindOne(ctx context.Context, shop, orderID string) (entity.ProcessedState, error) {
	ctx, span := repoTracer.Start(ctx, "OrderStateRedis.FindOne", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	v, err := r.client.HGet(ctx, r.key(shop), orderID).Result()
	if errors.Is(err, goredis.Nil) {
		return entity.Unknown(), nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hget failed")
		return entity.Unknown(), err
	}
	processed, err := parseFlag(v)
	if err != nil {
		return entity.Unknown(), err
	}
	return entity.Known(processed), nil
}

// Upsert overwrites the field.
func (r *RedisRepository) Upsert(ctx context.Context, shop, orderID string, processed bool) error {
	ctx, span := repoTracer.Start(ctx, "OrderStateRedis.Upsert", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.String("order.id", orderID),
		attribute.Bool("order.processed", processed),
	))
	defer span.End()

	value := "0"
	if processed {
		value = "1"
	}
	if err := r.client.HSet(ctx, r.key(shop), orderID, value).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hset failed")
		return err
	}
	return nil
}

// Toggle runs the flip script and returns the stored value.
func (r *RedisRepository) Toggle(ctx context.Context, shop, orderID string) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "OrderStateRedis.Toggle", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	next, err := toggleScript.Run(ctx, r.client, []string{r.key(shop)}, orderID).Int()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "toggle script failed")
		return false, err
	}
	span.SetAttributes(attribute.Bool("order.processed", next == 1))
	return next == 1, nil
}

func parseFlag(v any) (bool, error) {
	switch v {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, fmt.Errorf("unexpected order state value %v", v)
	}
}
