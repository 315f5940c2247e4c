package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "lotcli"
	ServiceVersion = "1.0.0"
	MeterName      = "lotcli"
)

// OTelProviders holds the OpenTelemetry providers for the server.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Metrics        *AnalysisMetrics
	Logger         *slog.Logger
}

// AnalysisMetrics are the domain counters and histograms recorded around
// every scoring run.
type AnalysisMetrics struct {
	BatchesScored   metric.Int64Counter
	LotsScored      metric.Int64Counter
	SuspiciousLots  metric.Int64Counter
	ScoringDuration metric.Float64Histogram
	ScoringFailures metric.Int64Counter
}

// InitializeOTel wires tracing (stdout exporter) and metrics (Prometheus
// exporter) and creates the analysis instruments.
func InitializeOTel(ctx context.Context, logger *slog.Logger) (*OTelProviders, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("creating otel resource: %w", err)
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	)
	otel.SetMeterProvider(meterProvider)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	meter := meterProvider.Meter(MeterName)
	metrics, err := createAnalysisMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("creating analysis metrics: %w", err)
	}

	logger.InfoContext(ctx, "observability initialized",
		"service", ServiceName,
		"version", ServiceVersion)

	return &OTelProviders{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Tracer:         tracerProvider.Tracer(ServiceName),
		Meter:          meter,
		PrometheusHTTP: promhttp.Handler(),
		Metrics:        metrics,
		Logger:         logger,
	}, nil
}

func createAnalysisMetrics(meter metric.Meter) (*AnalysisMetrics, error) {
	batches, err := meter.Int64Counter("analysis_batches_total",
		metric.WithDescription("Number of lot batches scored"))
	if err != nil {
		return nil, err
	}
	lots, err := meter.Int64Counter("analysis_lots_total",
		metric.WithDescription("Number of lots scored"))
	if err != nil {
		return nil, err
	}
	suspicious, err := meter.Int64Counter("analysis_suspicious_lots_total",
		metric.WithDescription("Number of lots flagged as suspicious"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("analysis_scoring_duration_seconds",
		metric.WithDescription("Duration of batch scoring"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("analysis_failures_total",
		metric.WithDescription("Number of failed scoring requests"))
	if err != nil {
		return nil, err
	}
	return &AnalysisMetrics{
		BatchesScored:   batches,
		LotsScored:      lots,
		SuspiciousLots:  suspicious,
		ScoringDuration: duration,
		ScoringFailures: failures,
	}, nil
}

// RecordBatch records one scored batch.
func (m *AnalysisMetrics) RecordBatch(ctx context.Context, lots, suspicious int, duration time.Duration) {
	if m == nil {
		return
	}
	m.BatchesScored.Add(ctx, 1)
	m.LotsScored.Add(ctx, int64(lots))
	m.SuspiciousLots.Add(ctx, int64(suspicious))
	m.ScoringDuration.Record(ctx, duration.Seconds())
}

// RecordFailure records one failed scoring request with its error kind.
func (m *AnalysisMetrics) RecordFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ScoringFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var firstErr error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
