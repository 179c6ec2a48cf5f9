package order

//go:generate mockgen -source handler.go -destination handler_mock_test.go -package order

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/vibita-lite/internal/dto"
	"github.com/Additional-Code/vibita-lite/internal/entity"
	"github.com/Additional-Code/vibita-lite/internal/export"
	"github.com/Additional-Code/vibita-lite/internal/presentation/http/response"
	service "github.com/Additional-Code/vibita-lite/internal/service/order"
	"github.com/Additional-Code/vibita-lite/internal/transport/http/tenant"
	"github.com/Additional-Code/vibita-lite/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/vibita-lite/transport/http/order")

// ActionToggle is the form action that flips the processed flag.
const ActionToggle = "toggle"

// Reconciler is the order workflow the handler drives.
type Reconciler interface {
	ListEnrichedOrders(ctx context.Context, shop string, pageSize int) (*service.Listing, error)
	ToggleProcessed(ctx context.Context, shop, orderID string) (bool, error)
	ExportOrders(ctx context.Context, shop string) ([]entity.Order, error)
}

// Handler exposes the dashboard endpoints.
type Handler struct {
	svc Reconciler
	now func() time.Time
}

// NewHandler constructs an order Handler.
func NewHandler(svc Reconciler) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// Register mounts the routes under g, which must resolve the tenant.
func Register(g *echo.Group, h *Handler) {
	g.GET("/orders", h.list)
	g.POST("/orders", h.submit)
	g.GET("/export", h.export)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	shop := tenant.Shop(c)

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return b.WithError(errorbank.Validation("limit must be an integer", errorbank.WithCause(err))).Build()
		}
		limit = n
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.Int("orders.limit", limit),
	))
	defer span.End()

	listing, err := h.svc.ListEnrichedOrders(ctx, shop, limit)
	if err != nil && (listing == nil || !listing.Degraded) {
		return b.WithError(err).Build()
	}

	return b.WithData(toListDTO(listing)).WithMeta("degraded", listing.Degraded).Build()
}

func (h *Handler) submit(c echo.Context) error {
	b := response.New(c)
	shop := tenant.Shop(c)

	action := strings.TrimSpace(c.FormValue("action"))
	if action != ActionToggle {
		return b.WithError(errorbank.Validation("unsupported action", errorbank.WithDetail("action", action))).Build()
	}
	orderID := strings.TrimSpace(c.FormValue("orderId"))

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.toggle", trace.WithAttributes(
		attribute.String("shop", shop),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	processed, err := h.svc.ToggleProcessed(ctx, shop, orderID)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.ToggleResponse{OrderID: orderID, IsProcessed: processed}).Build()
}

func (h *Handler) export(c echo.Context) error {
	b := response.New(c)
	shop := tenant.Shop(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.export", trace.WithAttributes(
		attribute.String("shop", shop),
	))
	defer span.End()

	orders, err := h.svc.ExportOrders(ctx, shop)
	if err != nil {
		return b.WithError(err).Build()
	}

	body, err := export.Encode(orders)
	if err != nil {
		return b.WithError(errorbank.Internal("export could not be generated", errorbank.WithCause(err))).Build()
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))

	return b.WithAttachment(export.Filename(h.now()), export.ContentType, body).Build()
}

func toListDTO(listing *service.Listing) dto.OrderListResponse {
	out := dto.OrderListResponse{
		Orders:     make([]dto.EnrichedOrderResponse, 0, len(listing.Orders)),
		Diagnostic: listing.Diagnostic,
	}
	for _, o := range listing.Orders {
		row := dto.EnrichedOrderResponse{
			ID:                o.ID,
			Name:              o.Name,
			CreatedAt:         o.CreatedAt,
			Email:             o.Email,
			FulfillmentStatus: string(o.FulfillmentStatus),
			IsProcessed:       o.IsProcessed(),
		}
		if o.Total != nil {
			row.Total = &dto.MoneyResponse{Amount: o.Total.Amount, CurrencyCode: o.Total.CurrencyCode}
		}
		out.Orders = append(out.Orders, row)
	}
	return out
}
