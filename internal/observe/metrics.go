// Package observe provides observability primitives for vizi-kp:
// OpenTelemetry metrics, tracing helpers, and HTTP middleware tying them
// together.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exposed for
// Prometheus scraping via the exporter bridge set up by [InitProvider]. A
// package-level default [Metrics] instance ([DefaultMetrics]) is provided for
// convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all vizi-kp metrics.
const meterName = "github.com/kairosUNIVERSAL/vizi-kp"

// Metrics holds the metric instruments the server records into. All fields
// are safe for concurrent use.
type Metrics struct {
	// ParseDuration is transcript parsing latency, labelled by strategy.
	ParseDuration metric.Float64Histogram

	// TranscribeDuration is audio transcription latency.
	TranscribeDuration metric.Float64Histogram

	// StrategyRequests counts strategy invocations by strategy and status.
	StrategyRequests metric.Int64Counter

	// CacheRequests counts parse cache lookups by status (hit, miss, error).
	CacheRequests metric.Int64Counter

	// EstimatesCreated counts persisted estimates.
	EstimatesCreated metric.Int64Counter

	// HTTPRequestDuration is request latency by method and path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets covers both sub-second deterministic parses and LLM calls
// that can run into minutes.
var latencyBuckets = []float64{
	0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics registers every instrument on a meter from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)

	var errs []error
	histogram := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name,
			metric.WithDescription(desc),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(latencyBuckets...))
		errs = append(errs, err)
		return h
	}
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}

	m := &Metrics{
		ParseDuration:       histogram("vizikp.parse.duration", "Latency of transcript parsing by strategy."),
		TranscribeDuration:  histogram("vizikp.transcribe.duration", "Latency of audio transcription."),
		StrategyRequests:    counter("vizikp.strategy.requests", "Total parse strategy invocations by strategy and status."),
		CacheRequests:       counter("vizikp.cache.requests", "Total parse cache lookups by status."),
		EstimatesCreated:    counter("vizikp.estimates.created", "Total estimates persisted."),
		HTTPRequestDuration: histogram("vizikp.http.request.duration", "HTTP request latency by method and path."),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("observe: create instruments: %w", err)
	}
	return m, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the shared [Metrics] instance backed by the global
// meter provider, creating it on first call. Panics if instrument creation
// fails, which cannot happen with the global provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordStrategyRequest counts one strategy invocation outcome.
func (m *Metrics) RecordStrategyRequest(ctx context.Context, strategy, status string) {
	m.StrategyRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.String("status", status),
	))
}

// RecordParseDuration observes one parse latency.
func (m *Metrics) RecordParseDuration(ctx context.Context, strategy string, seconds float64) {
	m.ParseDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("strategy", strategy),
	))
}

// RecordCacheRequest counts one parse cache lookup outcome.
func (m *Metrics) RecordCacheRequest(ctx context.Context, status string) {
	m.CacheRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}
