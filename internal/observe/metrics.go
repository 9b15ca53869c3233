// Package observe provides application-wide observability primitives for
// CareerVani: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed by [InitProvider] and served by
// [MetricsHandler] so metrics can be scraped from /metrics. A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all CareerVani metrics.
const meterName = "github.com/careervani/careervani"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// ─── Latency histograms per external service ───

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// GrammarDuration tracks grammar checker latency.
	GrammarDuration metric.Float64Histogram

	// TranslateDuration tracks regional-to-English translation latency.
	TranslateDuration metric.Float64Histogram

	// ─── Scoring ───

	// SpokenScore records every computed pronunciation score. Use with
	// attribute:
	//   attribute.String("mode", "result"|"report")
	SpokenScore metric.Float64Histogram

	// ─── Counters ───

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts provider errors. Use with attribute:
	//   attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// FeedbackSaved counts persisted feedback records. Use with attribute:
	//   attribute.String("source", "spoken"|"regional")
	FeedbackSaved metric.Int64Counter

	// InterviewAnswers counts answers submitted to interview flows. Use with
	// attribute:
	//   attribute.String("flow", "mock"|"video")
	InterviewAnswers metric.Int64Counter

	// BreakerTransitions counts circuit breaker state changes. Use with
	// attributes:
	//   attribute.String("backend", ...), attribute.String("to", ...)
	BreakerTransitions metric.Int64Counter

	// ─── HTTP middleware ───

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("route", ...),
	//   attribute.Int("status", ...)
	HTTPRequestDuration metric.Float64Histogram

	meter metric.Meter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for calls to
// remote speech, grammar and LLM services.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30,
}

// scoreBuckets spans the 0–10 score scale.
var scoreBuckets = []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{meter: m}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("careervani.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.GrammarDuration, err = m.Float64Histogram("careervani.grammar.duration",
		metric.WithDescription("Latency of grammar checking."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranslateDuration, err = m.Float64Histogram("careervani.translate.duration",
		metric.WithDescription("Latency of translation to English."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SpokenScore, err = m.Float64Histogram("careervani.spoken.score",
		metric.WithDescription("Distribution of pronunciation scores."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("careervani.provider.requests",
		metric.WithDescription("Total provider API requests by kind and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("careervani.provider.errors",
		metric.WithDescription("Total provider errors by kind."),
	); err != nil {
		return nil, err
	}
	if met.FeedbackSaved, err = m.Int64Counter("careervani.feedback.saved",
		metric.WithDescription("Total feedback records persisted by source."),
	); err != nil {
		return nil, err
	}
	if met.InterviewAnswers, err = m.Int64Counter("careervani.interview.answers",
		metric.WithDescription("Total interview answers by flow."),
	); err != nil {
		return nil, err
	}
	if met.BreakerTransitions, err = m.Int64Counter("careervani.breaker.transitions",
		metric.WithDescription("Circuit breaker state changes by backend and target state."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("careervani.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// ObserveActiveInterviews registers an asynchronous gauge reporting the number
// of users with a running interview. fn is called on every collection and must
// be safe for concurrent use.
func (m *Metrics) ObserveActiveInterviews(fn func() int) error {
	_, err := m.meter.Int64ObservableGauge("careervani.interviews.active",
		metric.WithDescription("Number of users with an in-progress interview."),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(fn()))
			return nil
		}),
	)
	return err
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

// RecordProviderCall records the request counter, the error counter on
// failure, and the latency histogram h (if non-nil) for one call to an
// external service of the given kind ("stt", "grammar", "llm").
func (m *Metrics) RecordProviderCall(ctx context.Context, kind string, h metric.Float64Histogram, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		m.ProviderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
	if h != nil {
		h.Record(ctx, elapsed.Seconds())
	}
}

// RecordScore records a pronunciation score for the given mode.
func (m *Metrics) RecordScore(ctx context.Context, mode string, score float64) {
	m.SpokenScore.Record(ctx, score, metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordFeedbackSaved increments the persisted feedback counter.
func (m *Metrics) RecordFeedbackSaved(ctx context.Context, source string) {
	m.FeedbackSaved.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordInterviewAnswer increments the interview answer counter.
func (m *Metrics) RecordInterviewAnswer(ctx context.Context, flow string) {
	m.InterviewAnswers.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", flow)))
}

// RecordBreakerTransition increments the breaker transition counter. Its
// signature fits a resilience.CircuitBreakerConfig.OnStateChange adapter.
func (m *Metrics) RecordBreakerTransition(backend, to string) {
	m.BreakerTransitions.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("to", to),
		),
	)
}
