package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Additional-Code/vibita-lite/internal/config"
)

var clientTracer = otel.Tracer("github.com/Additional-Code/vibita-lite/shopify")

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 8 << 20

var (
	// ErrUnknownShop is returned when no access token is configured for a shop.
	ErrUnknownShop = errors.New("shopify: shop is not installed")
	// ErrMalformedResponse is returned when the payload does not have the expected shape.
	ErrMalformedResponse = errors.New("shopify: malformed response")
)

// GraphQLError is one entry of the top level "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
}

// ResponseError reports an error payload or a non-2xx status from the Admin API.
type ResponseError struct {
	Status int
	Errors []GraphQLError
}

func (e *ResponseError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("shopify: unexpected status %d", e.Status)
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return fmt.Sprintf("shopify: graphql errors (status %d): %s", e.Status, strings.Join(msgs, "; "))
}

// Module provides the Admin API client to Fx.
var Module = fx.Provide(New)

// Client talks to the Shopify Admin GraphQL API on behalf of installed shops.
type Client struct {
	cfg      config.Shopify
	http     *http.Client
	logger   *zap.Logger
	limiters sync.Map // shop -> *rate.Limiter
}

// New builds a client with a traced transport. Request deadlines come from
// cfg.Shopify.Timeout and are applied per call.
func New(cfg config.Config, logger *zap.Logger) *Client {
	sc := cfg.Shopify
	if sc.RateLimit <= 0 {
		sc.RateLimit = float64(rate.Inf)
	}
	if sc.RateBurst <= 0 {
		sc.RateBurst = 1
	}
	return &Client{
		cfg: sc,
		http: &http.Client{
			Transport: otelhttp.NewTransport(&http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			}),
		},
		logger: logger,
	}
}

func (c *Client) limiter(shop string) *rate.Limiter {
	if v, ok := c.limiters.Load(shop); ok {
		return v.(*rate.Limiter)
	}
	v, _ := c.limiters.LoadOrStore(shop, rate.NewLimiter(rate.Limit(c.cfg.RateLimit), c.cfg.RateBurst))
	return v.(*rate.Limiter)
}

func (c *Client) endpoint(shop string) string {
	base := c.cfg.BaseURL
	if base == "" {
		base = "https://" + shop
	}
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", base, c.cfg.APIVersion)
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// do executes one GraphQL operation and returns the raw "data" member.
func (c *Client) do(ctx context.Context, operation, shop, query string, vars map[string]any) (json.RawMessage, error) {
	shop = config.NormalizeShop(shop)
	ctx, span := clientTracer.Start(ctx, "Shopify."+operation, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("shop", shop)))
	defer span.End()

	data, err := c.execute(ctx, shop, query, vars)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return data, nil
}

func (c *Client) execute(ctx context.Context, shop, query string, vars map[string]any) (json.RawMessage, error) {
	token, ok := c.cfg.Token(shop)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShop, shop)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	if err := c.limiter(shop).Wait(ctx); err != nil {
		return nil, fmt.Errorf("shopify rate limit wait: %w", err)
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(shop), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("shopify read body: %w", err)
	}

	var payload graphQLResponse
	decodeErr := json.Unmarshal(raw, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResponseError{Status: resp.StatusCode, Errors: payload.Errors}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	if len(payload.Errors) > 0 {
		return nil, &ResponseError{Status: resp.StatusCode, Errors: payload.Errors}
	}
	if len(payload.Data) == 0 || string(payload.Data) == "null" {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	return payload.Data, nil
}
