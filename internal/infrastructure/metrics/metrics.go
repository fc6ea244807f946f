// Package metrics records Kotoba's OpenTelemetry instruments and bridges them
// to a Prometheus scrape endpoint.
//
// All Record* methods are safe to call on a nil *Metrics, so services built
// without metrics (tests, one-off CLI commands) need no special casing.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// meterName is the instrumentation scope for every Kotoba instrument.
const meterName = "github.com/kotoba/backend"

var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

var similarityBuckets = []float64{
	0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1,
}

// Metrics holds the application's metric instruments
type Metrics struct {
	PronunciationAttempts   metric.Int64Counter
	PronunciationSimilarity metric.Float64Histogram
	QuizSubmissions         metric.Int64Counter
	UpstreamRequests        metric.Int64Counter
	UpstreamDuration        metric.Float64Histogram
	HTTPRequestDuration     metric.Float64Histogram
}

// NewMetrics creates every instrument from mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	met := &Metrics{}
	var err error

	if met.PronunciationAttempts, err = m.Int64Counter("kotoba.pronunciation.attempts",
		metric.WithDescription("Scored pronunciation attempts by outcome."),
	); err != nil {
		return nil, err
	}
	if met.PronunciationSimilarity, err = m.Float64Histogram("kotoba.pronunciation.similarity",
		metric.WithDescription("Positional similarity of scored pronunciation attempts."),
		metric.WithExplicitBucketBoundaries(similarityBuckets...),
	); err != nil {
		return nil, err
	}
	if met.QuizSubmissions, err = m.Int64Counter("kotoba.quiz.submissions",
		metric.WithDescription("Completed quizzes by category."),
	); err != nil {
		return nil, err
	}
	if met.UpstreamRequests, err = m.Int64Counter("kotoba.upstream.requests",
		metric.WithDescription("Language model and speech API calls by kind and status."),
	); err != nil {
		return nil, err
	}
	if met.UpstreamDuration, err = m.Float64Histogram("kotoba.upstream.duration",
		metric.WithDescription("Latency of language model and speech API calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("kotoba.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// InitProvider installs a global MeterProvider backed by the Prometheus exporter.
// The returned shutdown function flushes the provider.
func InitProvider(ctx context.Context, serviceName, version string) (func(context.Context) error, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := promexporter.New()
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}

// Handler serves the Prometheus text exposition of the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPronunciation counts one scored attempt
func (m *Metrics) RecordPronunciation(ctx context.Context, similarity float64, correct bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("correct", correct))
	m.PronunciationAttempts.Add(ctx, 1, attrs)
	m.PronunciationSimilarity.Record(ctx, similarity, attrs)
}

// RecordQuizSubmission counts one completed quiz
func (m *Metrics) RecordQuizSubmission(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.QuizSubmissions.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

// RecordUpstream counts one upstream call and its latency in seconds
func (m *Metrics) RecordUpstream(ctx context.Context, kind string, seconds float64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.UpstreamRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
	m.UpstreamDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}
