package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const meterName = "github.com/Additional-Code/vibita-lite"

// Listing outcomes recorded by RecordListing.
const (
	ListingOK        = "ok"
	ListingDegraded  = "degraded"
	ListingStateMiss = "state_unavailable"
)

// Metrics groups the domain instruments. A nil *Metrics records nothing.
type Metrics struct {
	toggles       metric.Int64Counter
	listings      metric.Int64Counter
	remoteLatency metric.Float64Histogram
}

// NewMetrics registers the domain instruments on the manager's provider.
func NewMetrics(mgr *Manager, logger *zap.Logger) (*Metrics, error) {
	metrics, err := NewMetricsFrom(mgr.MeterProvider())
	if err != nil {
		return nil, err
	}
	logger.Debug("domain metrics registered", zap.Bool("exporting", mgr.MetricsEnabled()))
	return metrics, nil
}

// NewMetricsFrom registers the instruments on provider.
func NewMetricsFrom(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	toggles, err := meter.Int64Counter("orderstate.toggles",
		metric.WithDescription("Processed-flag toggles by result."),
	)
	if err != nil {
		return nil, err
	}
	listings, err := meter.Int64Counter("orders.listings",
		metric.WithDescription("Enriched order listings by outcome."),
	)
	if err != nil {
		return nil, err
	}
	remoteLatency, err := meter.Float64Histogram("shopify.request.duration",
		metric.WithDescription("Latency of Admin API calls."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{toggles: toggles, listings: listings, remoteLatency: remoteLatency}, nil
}

// RecordToggle counts one toggle attempt.
func (m *Metrics) RecordToggle(ctx context.Context, processed bool, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.toggles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
		attribute.Bool("processed", processed),
	))
}

// RecordListing counts one listing by outcome.
func (m *Metrics) RecordListing(ctx context.Context, outcome string, size int) {
	if m == nil {
		return
	}
	m.listings.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("size", size),
	))
}

// ObserveRemote records the duration of one upstream call started at start.
func (m *Metrics) ObserveRemote(ctx context.Context, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.remoteLatency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("error", err != nil),
	))
}
