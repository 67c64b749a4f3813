package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Prometheus counterparts of the core counters, exposed on the scrape
// endpoint next to the OTel push pipeline.
var (
	analysesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "scoring",
			Name:      "analyses_total",
			Help:      "Total number of analyses scored",
		},
		[]string{"risk_level"},
	)

	alertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "audit",
			Name:      "alerts_total",
			Help:      "Total number of alerts raised",
		},
		[]string{"level"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sentinel",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"method", "route"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

// Registry holds all domain-specific metrics for the application. A nil
// Registry is valid and records nothing, so services can run unmetered in
// tests.
type Registry struct {
	meter metric.Meter

	// Scoring metrics
	AnalysisDuration metric.Float64Histogram
	AnalysisCounter  metric.Int64Counter

	// Persistence metrics
	PersistenceFailureCounter metric.Int64Counter

	// Audit metrics
	AlertCounter         metric.Int64Counter
	ActivityCounter      metric.Int64Counter
	SensitiveChangeCount metric.Int64Counter

	// API metrics
	APIRequestDuration metric.Float64Histogram
	APIRequestCounter  metric.Int64Counter

	// Cache metrics
	CacheHitCounter  metric.Int64Counter
	CacheMissCounter metric.Int64Counter
}

// NewRegistry creates a metrics registry bound to the named meter.
func NewRegistry(meterName string) (*Registry, error) {
	meter := otel.Meter(meterName)
	r := &Registry{meter: meter}

	var err error

	r.AnalysisDuration, err = meter.Float64Histogram(
		"scoring.analysis.duration",
		metric.WithDescription("Duration of a full analysis in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	r.AnalysisCounter, err = meter.Int64Counter(
		"scoring.analysis.total",
		metric.WithDescription("Completed analyses by risk level"),
	)
	if err != nil {
		return nil, err
	}

	r.PersistenceFailureCounter, err = meter.Int64Counter(
		"persistence.failures.total",
		metric.WithDescription("Failed writes to the backing store by operation"),
	)
	if err != nil {
		return nil, err
	}

	r.AlertCounter, err = meter.Int64Counter(
		"audit.alerts.total",
		metric.WithDescription("Alerts raised by level"),
	)
	if err != nil {
		return nil, err
	}

	r.ActivityCounter, err = meter.Int64Counter(
		"audit.activities.total",
		metric.WithDescription("Activity log entries appended by kind"),
	)
	if err != nil {
		return nil, err
	}

	r.SensitiveChangeCount, err = meter.Int64Counter(
		"audit.sensitive_changes.total",
		metric.WithDescription("Sensitive changes recorded by kind"),
	)
	if err != nil {
		return nil, err
	}

	r.APIRequestDuration, err = meter.Float64Histogram(
		"api.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	r.APIRequestCounter, err = meter.Int64Counter(
		"api.request.total",
		metric.WithDescription("HTTP requests by route and status"),
	)
	if err != nil {
		return nil, err
	}

	r.CacheHitCounter, err = meter.Int64Counter(
		"cache.hits.total",
		metric.WithDescription("Summary cache hits"),
	)
	if err != nil {
		return nil, err
	}

	r.CacheMissCounter, err = meter.Int64Counter(
		"cache.misses.total",
		metric.WithDescription("Summary cache misses"),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// RecordAnalysis records one completed analysis.
func (r *Registry) RecordAnalysis(ctx context.Context, level string, took time.Duration) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("risk_level", level))
	r.AnalysisCounter.Add(ctx, 1, attrs)
	r.AnalysisDuration.Record(ctx, float64(took.Milliseconds()), attrs)
	analysesScored.WithLabelValues(level).Inc()
}

// RecordPersistenceFailure records a failed store write.
func (r *Registry) RecordPersistenceFailure(ctx context.Context, operation string) {
	if r == nil {
		return
	}
	r.PersistenceFailureCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordAlert records a raised alert.
func (r *Registry) RecordAlert(ctx context.Context, level string) {
	if r == nil {
		return
	}
	r.AlertCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("level", level)))
	alertsRaised.WithLabelValues(level).Inc()
}

// RecordActivity records an appended activity entry.
func (r *Registry) RecordActivity(ctx context.Context, kind string) {
	if r == nil {
		return
	}
	r.ActivityCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordSensitiveChange records a sensitive-change entry.
func (r *Registry) RecordSensitiveChange(ctx context.Context, kind string) {
	if r == nil {
		return
	}
	r.SensitiveChangeCount.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordAPIRequest records one handled HTTP request.
func (r *Registry) RecordAPIRequest(ctx context.Context, method, route string, status int, took time.Duration) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	r.APIRequestCounter.Add(ctx, 1, attrs)
	r.APIRequestDuration.Record(ctx, float64(took.Milliseconds()), attrs)
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// RecordCacheHit records a summary cache hit or miss.
func (r *Registry) RecordCacheHit(ctx context.Context, hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.CacheHitCounter.Add(ctx, 1)
		return
	}
	r.CacheMissCounter.Add(ctx, 1)
}
