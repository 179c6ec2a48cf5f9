package orderstate

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/vibita-lite/internal/database"
	"github.com/Additional-Code/vibita-lite/internal/entity"
)

// SQLRepository stores order states in the order_states table.
type SQLRepository struct {
	writer *bun.DB
	reader *bun.DB
	now    func() time.Time
}

// NewSQLRepository wires a repository backed by configured database connections.
func NewSQLRepository(conns *database.Connections) *SQLRepository {
	return &SQLRepository{
		writer: conns.Writer,
		reader: conns.Reader,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FindMany loads the rows of shop among orderIDs from the read connection.
func (r *SQLRepository) FindMany(ctx context.Context, shop string, orderIDs []string) ([]entity.OrderState, error) {
	ctx, span := repoTracer.Start(ctx, "OrderStateRepository.FindMany", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.Int("order.count", len(orderIDs)),
	))
	defer span.End()

	if len(orderIDs) == 0 {
		return nil, nil
	}

	var rows []entity.OrderState
	err := r.reader.NewSelect().
		Model(&rows).
		Where("shop = ?", shop).
		Where("order_id IN (?)", bun.In(orderIDs)).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return rows, nil
}

// FindOne reads a single flag from the read connection.
func (r *SQLRepository) FindOne(ctx context.Context, shop, orderID string) (entity.ProcessedState, error) {
	ctx, span := repoTracer.Start(ctx, "OrderStateRepository.FindOne", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	row := new(entity.OrderState)
	err := r.reader.NewSelect().
		Model(row).
		Column("is_processed").
		Where("shop = ?", shop).
		Where("order_id = ?", orderID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Unknown(), nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return entity.Unknown(), err
	}
	return entity.Known(row.IsProcessed), nil
}

// Upsert sets the flag inside one transaction.
func (r *SQLRepository) Upsert(ctx context.Context, shop, orderID string, processed bool) error {
	ctx, span := repoTracer.Start(ctx, "OrderStateRepository.Upsert", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.String("order.id", orderID),
		attribute.Bool("order.processed", processed),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := r.now()
		if err := r.ensureRow(ctx, tx, shop, orderID, now); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model((*entity.OrderState)(nil)).
			Set("is_processed = ?", processed).
			Set("version = version + 1").
			Set("updated_at = ?", now).
			Where("shop = ?", shop).
			Where("order_id = ?", orderID).
			Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
	}
	return err
}

// Toggle flips the flag with a single UPDATE so concurrent toggles on the
// same key serialise on the row lock and never read a stale value.
func (r *SQLRepository) Toggle(ctx context.Context, shop, orderID string) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "OrderStateRepository.Toggle", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	var next bool
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := r.now()
		if err := r.ensureRow(ctx, tx, shop, orderID, now); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model((*entity.OrderState)(nil)).
			Set("is_processed = NOT is_processed").
			Set("version = version + 1").
			Set("updated_at = ?", now).
			Where("shop = ?", shop).
			Where("order_id = ?", orderID).
			Exec(ctx)
		if err != nil {
			return err
		}
		return tx.NewSelect().
			Model((*entity.OrderState)(nil)).
			Column("is_processed").
			Where("shop = ?", shop).
			Where("order_id = ?", orderID).
			Scan(ctx, &next)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "toggle failed")
		return false, err
	}
	span.SetAttributes(attribute.Bool("order.processed", next))
	return next, nil
}

// ensureRow inserts an unprocessed row unless one exists.
func (r *SQLRepository) ensureRow(ctx context.Context, tx bun.Tx, shop, orderID string, now time.Time) error {
	row := &entity.OrderState{
		Shop:      shop,
		OrderID:   orderID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := tx.NewInsert().Model(row).Ignore().Exec(ctx)
	return err
}
