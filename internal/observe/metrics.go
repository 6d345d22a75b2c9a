// Package observe provides application-wide observability primitives:
// OpenTelemetry metrics, distributed tracing, structured logging, and HTTP
// middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/daniel5812/brain-dump-server"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// TurnDuration tracks end-to-end processing latency of one user turn,
	// from request receipt to the last executed action.
	TurnDuration metric.Float64Histogram

	// ExtractDuration tracks LLM intent-extraction latency.
	ExtractDuration metric.Float64Histogram

	// --- Counters ---

	// Turns counts processed turns. Use with attribute:
	//   attribute.String("outcome", ...) — task, meeting, idea, followup,
	//   followup_reply, misunderstood, error.
	Turns metric.Int64Counter

	// LLMRequests counts LLM backend calls. Use with attributes:
	//   attribute.String("backend", ...), attribute.String("status", ...)
	LLMRequests metric.Int64Counter

	// MessagesSent counts outgoing WhatsApp messages. Use with attribute:
	//   attribute.String("status", ...)
	MessagesSent metric.Int64Counter

	// IntegrationRequests counts calls to external task and calendar
	// services. Use with attributes:
	//   attribute.String("integration", ...), attribute.String("status", ...)
	IntegrationRequests metric.Int64Counter

	// --- Gauges ---

	// PendingFollowups tracks the number of open clarification requests.
	PendingFollowups metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// LLM-bound turn latencies.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TurnDuration, err = m.Float64Histogram("braindump.turn.duration",
		metric.WithDescription("End-to-end latency of one user turn."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ExtractDuration, err = m.Float64Histogram("braindump.extract.duration",
		metric.WithDescription("Latency of LLM intent extraction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Turns, err = m.Int64Counter("braindump.turns",
		metric.WithDescription("Total processed turns by outcome."),
	); err != nil {
		return nil, err
	}
	if met.LLMRequests, err = m.Int64Counter("braindump.llm.requests",
		metric.WithDescription("Total LLM backend requests by backend and status."),
	); err != nil {
		return nil, err
	}
	if met.MessagesSent, err = m.Int64Counter("braindump.messages.sent",
		metric.WithDescription("Total outgoing WhatsApp messages by status."),
	); err != nil {
		return nil, err
	}
	if met.IntegrationRequests, err = m.Int64Counter("braindump.integration.requests",
		metric.WithDescription("Total external integration requests by integration and status."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.PendingFollowups, err = m.Int64UpDownCounter("braindump.pending_followups",
		metric.WithDescription("Number of open clarification requests."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("braindump.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordTurn records a processed turn with its outcome.
func (m *Metrics) RecordTurn(ctx context.Context, outcome string) {
	m.Turns.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordLLMRequest records an LLM backend call with the standard attribute set.
func (m *Metrics) RecordLLMRequest(ctx context.Context, backend, status string) {
	m.LLMRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("status", status),
		),
	)
}

// RecordMessageSent records an outgoing WhatsApp message.
func (m *Metrics) RecordMessageSent(ctx context.Context, status string) {
	m.MessagesSent.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordIntegrationRequest records a call to an external task or calendar
// service.
func (m *Metrics) RecordIntegrationRequest(ctx context.Context, integration, status string) {
	m.IntegrationRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("integration", integration),
			attribute.String("status", status),
		),
	)
}
