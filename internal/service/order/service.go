package order

//go:generate mockgen -source service.go -destination service_mock_test.go -package order

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/vibita-lite/internal/entity"
	"github.com/Additional-Code/vibita-lite/internal/observability"
	"github.com/Additional-Code/vibita-lite/internal/shopify"
	"github.com/Additional-Code/vibita-lite/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/vibita-lite/service/order")

// OrderSource supplies recent orders of a shop.
type OrderSource interface {
	RecentOrders(ctx context.Context, shop string, limit int) ([]entity.Order, error)
	OrderExists(ctx context.Context, shop, orderID string) (bool, error)
}

// StateStore persists processed flags. Toggle must flip atomically.
type StateStore interface {
	FindMany(ctx context.Context, shop string, orderIDs []string) ([]entity.OrderState, error)
	FindOne(ctx context.Context, shop, orderID string) (entity.ProcessedState, error)
	Upsert(ctx context.Context, shop, orderID string, processed bool) error
	Toggle(ctx context.Context, shop, orderID string) (bool, error)
}

// Publisher emits order state events.
type Publisher interface {
	Publish(ctx context.Context, key []byte, value []byte) error
}

// Options tunes the reconciler.
type Options struct {
	PageSize        int
	MaxPageSize     int
	ExportLimit     int
	VerifyOwnership bool
	WriteTimeout    time.Duration
}

// Listing is the result of ListEnrichedOrders. Orders is either the full
// remote page or empty; Diagnostic carries a plain-language note for the
// merchant when something went wrong.
type Listing struct {
	Orders     []entity.EnrichedOrder
	Diagnostic string
	Degraded   bool
}

// OrderStateToggledEvent is published after every committed toggle.
type OrderStateToggledEvent struct {
	Shop        string    `json:"shop"`
	OrderID     string    `json:"order_id"`
	IsProcessed bool      `json:"is_processed"`
	ToggledAt   time.Time `json:"toggled_at"`
}

// EventKey partitions events by order.
func EventKey(shop, orderID string) []byte {
	return []byte(shop + "/" + orderID)
}

const (
	diagStateUnavailable = "Processing status could not be loaded; all orders are shown as not processed."
	diagRemoteTimeout    = "Shopify did not respond in time. Please reload the page."
	diagRemoteRejected   = "Shopify returned an error while loading orders. Please try again shortly."
	diagRemoteMalformed  = "Shopify returned an unexpected response. Please try again shortly."
	diagShopNotInstalled = "This store is not connected to the app. Please reinstall it from the Shopify admin."
	diagRemoteDefault    = "Orders could not be loaded from Shopify. Please try again."
)

// publishTimeout bounds the best-effort event publish after a toggle.
const publishTimeout = 2 * time.Second

// Service reconciles remote orders with locally owned processing state.
type Service struct {
	source    OrderSource
	store     StateStore
	publisher Publisher
	metrics   *observability.Metrics
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
}

// New builds a Service. publisher and metrics may be nil.
func New(source OrderSource, store StateStore, publisher Publisher, metrics *observability.Metrics, logger *zap.Logger, opts Options) *Service {
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 50
	}
	if opts.PageSize <= 0 || opts.PageSize > opts.MaxPageSize {
		opts.PageSize = opts.MaxPageSize
	}
	if opts.ExportLimit <= 0 {
		opts.ExportLimit = shopify.MaxPageSize
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Service{
		source:    source,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PageSize resolves a requested page size: non-positive means default,
// larger than the maximum is clamped.
func (s *Service) PageSize(requested int) int {
	switch {
	case requested <= 0:
		return s.opts.PageSize
	case requested > s.opts.MaxPageSize:
		return s.opts.MaxPageSize
	default:
		return requested
	}
}

// ListEnrichedOrders fetches the newest orders of shop and joins their
// processed flags. On an upstream failure the listing is empty, degraded
// and accompanied by a remote_source error. A state read failure is not
// an error: every row is shown as not processed.
func (s *Service) ListEnrichedOrders(ctx context.Context, shop string, pageSize int) (*Listing, error) {
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return nil, errorbank.Validation("shop is required", errorbank.WithDetail("field", "shop"))
	}
	size := s.PageSize(pageSize)

	ctx, span := serviceTracer.Start(ctx, "OrderService.ListEnrichedOrders", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.Int("orders.limit", size),
	))
	defer span.End()

	start := time.Now()
	orders, err := s.source.RecentOrders(ctx, shop, size)
	s.metrics.ObserveRemote(ctx, "RecentOrders", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remote fetch failed")
		s.logger.Warn("orders fetch failed", zap.String("shop", shop), zap.Int("limit", size), zap.Error(err))
		s.metrics.RecordListing(ctx, observability.ListingDegraded, 0)

		diagnostic := remoteDiagnostic(err)
		listing := &Listing{Orders: []entity.EnrichedOrder{}, Diagnostic: diagnostic, Degraded: true}
		return listing, errorbank.RemoteSource(diagnostic, errorbank.WithCause(err))
	}
	if len(orders) > size {
		orders = orders[:size]
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	states := make(map[string]entity.ProcessedState, len(ids))
	listing := &Listing{Orders: make([]entity.EnrichedOrder, 0, len(orders))}

	rows, err := s.store.FindMany(ctx, shop, ids)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("order state read failed; showing orders as not processed",
			zap.String("shop", shop), zap.Int("orders", len(ids)), zap.Error(err))
		listing.Diagnostic = diagStateUnavailable
	} else {
		for _, row := range rows {
			states[row.OrderID] = entity.Known(row.IsProcessed)
		}
	}

	for _, o := range orders {
		// a missing key yields the zero ProcessedState, which is Unknown
		listing.Orders = append(listing.Orders, entity.EnrichedOrder{Order: o, State: states[o.ID]})
	}

	outcome := observability.ListingOK
	if listing.Diagnostic != "" {
		outcome = observability.ListingStateMiss
	}
	s.metrics.RecordListing(ctx, outcome, len(listing.Orders))
	span.SetAttributes(attribute.Int("orders.count", len(listing.Orders)))
	return listing, nil
}

// ToggleProcessed flips the processed flag of orderID for shop and returns
// the new value. The write is skipped when ctx is already done; once
// started it runs to completion under its own deadline so a caller hanging
// up cannot leave it half applied.
func (s *Service) ToggleProcessed(ctx context.Context, shop, orderID string) (bool, error) {
	shop, orderID, err := validateKey(shop, orderID)
	if err != nil {
		return false, err
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.ToggleProcessed", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	if err := s.verifyOwnership(ctx, shop, orderID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ownership check failed")
		return false, err
	}

	if err := ctx.Err(); err != nil {
		return false, errorbank.Internal("request was cancelled before the update started", errorbank.WithCause(err))
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.WriteTimeout)
	defer cancel()

	next, err := s.store.Toggle(writeCtx, shop, orderID)
	s.metrics.RecordToggle(ctx, next, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "toggle failed")
		s.logger.Error("order state toggle failed", zap.String("shop", shop), zap.String("order_id", orderID), zap.Error(err))
		return false, errorbank.Persistence("The order could not be updated. Please try again.", errorbank.WithCause(err))
	}

	s.logger.Info("order state toggled", zap.String("shop", shop), zap.String("order_id", orderID), zap.Bool("processed", next))
	s.publishToggled(context.WithoutCancel(ctx), shop, orderID, next)

	span.SetAttributes(attribute.Bool("order.processed", next))
	return next, nil
}

// ProcessedState reads the stored flag without collapsing Unknown.
func (s *Service) ProcessedState(ctx context.Context, shop, orderID string) (entity.ProcessedState, error) {
	shop, orderID, err := validateKey(shop, orderID)
	if err != nil {
		return entity.Unknown(), err
	}

	state, err := s.store.FindOne(ctx, shop, orderID)
	if err != nil {
		s.logger.Warn("order state read failed", zap.String("shop", shop), zap.String("order_id", orderID), zap.Error(err))
		return entity.Unknown(), errorbank.Persistence("The order status could not be read.", errorbank.WithCause(err))
	}
	return state, nil
}

// SetProcessed overwrites the flag. It is an operator action and skips the
// ownership check.
func (s *Service) SetProcessed(ctx context.Context, shop, orderID string, processed bool) error {
	shop, orderID, err := validateKey(shop, orderID)
	if err != nil {
		return err
	}

	if err := s.store.Upsert(ctx, shop, orderID, processed); err != nil {
		s.logger.Error("order state upsert failed", zap.String("shop", shop), zap.String("order_id", orderID), zap.Error(err))
		return errorbank.Persistence("The order could not be updated.", errorbank.WithCause(err))
	}
	s.logger.Info("order state set", zap.String("shop", shop), zap.String("order_id", orderID), zap.Bool("processed", processed))
	return nil
}

// ExportOrders pulls the orders included in a CSV export. Processing state
// is not part of the export.
func (s *Service) ExportOrders(ctx context.Context, shop string) ([]entity.Order, error) {
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return nil, errorbank.Validation("shop is required", errorbank.WithDetail("field", "shop"))
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.ExportOrders", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.Int("orders.limit", s.opts.ExportLimit),
	))
	defer span.End()

	start := time.Now()
	orders, err := s.source.RecentOrders(ctx, shop, s.opts.ExportLimit)
	s.metrics.ObserveRemote(ctx, "RecentOrders", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remote fetch failed")
		s.logger.Warn("export fetch failed", zap.String("shop", shop), zap.Error(err))
		return nil, errorbank.RemoteSource(remoteDiagnostic(err), errorbank.WithCause(err))
	}
	return orders, nil
}

func (s *Service) verifyOwnership(ctx context.Context, shop, orderID string) error {
	if !s.opts.VerifyOwnership {
		return nil
	}

	start := time.Now()
	exists, err := s.source.OrderExists(ctx, shop, orderID)
	s.metrics.ObserveRemote(ctx, "OrderExists", start, err)
	if err != nil {
		s.logger.Warn("order ownership check failed", zap.String("shop", shop), zap.String("order_id", orderID), zap.Error(err))
		return errorbank.RemoteSource(remoteDiagnostic(err), errorbank.WithCause(err))
	}
	if !exists {
		return errorbank.NotFound("order not found", errorbank.WithDetail("orderId", orderID))
	}
	return nil
}

func (s *Service) publishToggled(ctx context.Context, shop, orderID string, processed bool) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(OrderStateToggledEvent{
		Shop:        shop,
		OrderID:     orderID,
		IsProcessed: processed,
		ToggledAt:   s.now(),
	})
	if err != nil {
		s.logger.Warn("failed to encode order state event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, EventKey(shop, orderID), payload); err != nil {
		s.logger.Warn("failed to publish order state event", zap.String("shop", shop), zap.String("order_id", orderID), zap.Error(err))
	}
}

func validateKey(shop, orderID string) (string, string, error) {
	shop = strings.TrimSpace(shop)
	orderID = strings.TrimSpace(orderID)

	missing := make([]string, 0, 2)
	if shop == "" {
		missing = append(missing, "shop")
	}
	if orderID == "" {
		missing = append(missing, "orderId")
	}
	if len(missing) > 0 {
		return "", "", errorbank.Validation("shop and order id are required", errorbank.WithDetail("missing", missing))
	}
	return shop, orderID, nil
}

func remoteDiagnostic(err error) string {
	var respErr *shopify.ResponseError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return diagRemoteTimeout
	case errors.Is(err, shopify.ErrUnknownShop):
		return diagShopNotInstalled
	case errors.Is(err, shopify.ErrMalformedResponse):
		return diagRemoteMalformed
	case errors.As(err, &respErr):
		return diagRemoteRejected
	default:
		return diagRemoteDefault
	}
}
