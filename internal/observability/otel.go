package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cvmatch/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Metrics holds all custom metrics for cvmatch
type Metrics struct {
	// Matching metrics
	MatchDuration metric.Float64Histogram
	MatchCount    metric.Int64Counter
	MatchErrors   metric.Int64Counter

	// Embedding metrics
	EmbeddingDuration metric.Float64Histogram
	EmbeddingCount    metric.Int64Counter
	EmbeddingErrors   metric.Int64Counter

	// Business metrics
	CandidatesScored metric.Int64Counter
	BatchesProcessed metric.Int64Counter
	DegradedMatches  metric.Int64Counter

	// Certificate metrics
	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// Manager owns the OpenTelemetry tracer and meter providers.
type Manager struct {
	config           *config.Config
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.ServeMux
}

// NewManager sets up tracing and metrics per the observability configuration.
// A disabled configuration yields a manager whose middleware and tracer are
// no-ops.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{config: cfg}
	if !cfg.Observability.Enabled {
		return m, nil
	}

	res, err := m.buildResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := m.initTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := m.initMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return m, nil
}

func (m *Manager) buildResource() (*resource.Resource, error) {
	obs := m.config.Observability
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(obs.ServiceName),
			semconv.ServiceVersion(obs.ServiceVersion),
			attribute.String("service.instance.id", obs.ServiceInstance),
		),
	)
}

// initTracing sets up the tracer provider and exporter
func (m *Manager) initTracing(res *resource.Resource) error {
	obs := m.config.Observability

	var exporter trace.SpanExporter
	var err error
	switch {
	case obs.ConsoleOutput:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case obs.OTLP.Enabled:
		exporter, err = m.createOTLPTraceExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(obs.Tracing.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

// initMetrics sets up the meter provider, exporters, and custom metrics
func (m *Manager) initMetrics(res *resource.Resource) error {
	readers, err := m.setupMetricReaders()
	if err != nil {
		return err
	}

	options := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		options = append(options, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(options...)
	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	return m.initCustomMetrics()
}

func (m *Manager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	obs := m.config.Observability
	var readers []sdkmetric.Reader

	if obs.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers,
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(m.collectionInterval())))
	}

	if obs.OTLP.Enabled {
		reader, err := m.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if obs.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(obs.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		if reader != nil {
			readers = append(readers, reader)
			m.prometheusServer = mux
			if err := StartPrometheusServer(mux, obs.Prometheus.Port); err != nil {
				return nil, fmt.Errorf("failed to start Prometheus server: %w", err)
			}
		}
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// initCustomMetrics creates all custom metrics for cvmatch
func (m *Manager) initCustomMetrics() error {
	meter := m.meterProvider.Meter(m.config.Observability.ServiceName)
	m.metrics = &Metrics{}
	var err error

	m.metrics.MatchDuration, err = meter.Float64Histogram(
		"cvmatch_match_duration_seconds",
		metric.WithDescription("Time spent scoring candidate/job pairs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create match duration metric: %w", err)
	}

	m.metrics.MatchCount, err = meter.Int64Counter(
		"cvmatch_match_requests_total",
		metric.WithDescription("Total number of match requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create match count metric: %w", err)
	}

	m.metrics.MatchErrors, err = meter.Int64Counter(
		"cvmatch_match_errors_total",
		metric.WithDescription("Total number of failed match requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create match error metric: %w", err)
	}

	m.metrics.EmbeddingDuration, err = meter.Float64Histogram(
		"cvmatch_embedding_duration_seconds",
		metric.WithDescription("Time spent generating embeddings"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create embedding duration metric: %w", err)
	}

	m.metrics.EmbeddingCount, err = meter.Int64Counter(
		"cvmatch_embedding_requests_total",
		metric.WithDescription("Total number of embedding requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create embedding count metric: %w", err)
	}

	m.metrics.EmbeddingErrors, err = meter.Int64Counter(
		"cvmatch_embedding_errors_total",
		metric.WithDescription("Total number of failed embedding requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create embedding error metric: %w", err)
	}

	m.metrics.CandidatesScored, err = meter.Int64Counter(
		"cvmatch_candidates_scored_total",
		metric.WithDescription("Total number of candidates scored"),
	)
	if err != nil {
		return fmt.Errorf("failed to create candidates scored metric: %w", err)
	}

	m.metrics.BatchesProcessed, err = meter.Int64Counter(
		"cvmatch_batches_processed_total",
		metric.WithDescription("Total number of batch match requests processed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create batches processed metric: %w", err)
	}

	m.metrics.DegradedMatches, err = meter.Int64Counter(
		"cvmatch_degraded_matches_total",
		metric.WithDescription("Total number of matches scored with placeholder embeddings"),
	)
	if err != nil {
		return fmt.Errorf("failed to create degraded matches metric: %w", err)
	}

	m.metrics.CertReloadCount, err = meter.Int64Counter(
		"cvmatch_cert_reloads_total",
		metric.WithDescription("Total number of certificate reloads"),
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate reload count metric: %w", err)
	}

	m.metrics.CertExpiryTime, err = meter.Float64Gauge(
		"cvmatch_cert_expiry_seconds",
		metric.WithDescription("Seconds until certificate expiry"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate expiry time metric: %w", err)
	}

	m.metrics.RateLimitHits, err = meter.Int64Counter(
		"cvmatch_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance
func (m *Manager) GetMetrics() *Metrics {
	if m.metrics == nil {
		return &Metrics{}
	}
	return m.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (m *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !m.config.Observability.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}
	return otelhttp.NewMiddleware(
		m.config.Observability.ServiceName,
		otelhttp.WithTracerProvider(m.tracerProvider),
		otelhttp.WithMeterProvider(m.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if !m.config.Observability.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (m *Manager) Shutdown(ctx context.Context) error {
	for _, shutdown := range m.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// TrackMatchOperation instruments a match operation with duration and
// success/error counters.
func (mt *Metrics) TrackMatchOperation(ctx context.Context, operation string, fn func(context.Context) error) error {
	if mt.MatchDuration == nil {
		return fn(ctx)
	}

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}
	mt.MatchDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	mt.MatchCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		mt.MatchErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	return err
}

// TrackEmbedding records embedding call metrics.
func (mt *Metrics) TrackEmbedding(ctx context.Context, duration time.Duration, err error) {
	if mt.EmbeddingCount == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.Bool("success", err == nil)}
	mt.EmbeddingDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	mt.EmbeddingCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		mt.EmbeddingErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordCandidatesScored counts scored candidates, flagging degraded results.
func (mt *Metrics) RecordCandidatesScored(ctx context.Context, count int64, degraded int64) {
	if mt.CandidatesScored != nil {
		mt.CandidatesScored.Add(ctx, count)
	}
	if mt.DegradedMatches != nil && degraded > 0 {
		mt.DegradedMatches.Add(ctx, degraded)
	}
}

// RecordBatchProcessed counts one processed batch.
func (mt *Metrics) RecordBatchProcessed(ctx context.Context, success bool) {
	if mt.BatchesProcessed != nil {
		mt.BatchesProcessed.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}

// RecordRateLimitHit counts one rejected request.
func (mt *Metrics) RecordRateLimitHit(ctx context.Context, key string) {
	if mt.RateLimitHits != nil {
		mt.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limiter_key", key)))
	}
}

// No-op exporter for when neither console nor OTLP output is configured
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

func (m *Manager) createOTLPTraceExporter() (trace.SpanExporter, error) {
	otlpConfig := m.config.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

func (m *Manager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := m.config.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(m.collectionInterval())), nil
}

func (m *Manager) collectionInterval() time.Duration {
	if interval := m.config.Observability.Metrics.CollectionInterval; interval > 0 {
		return interval
	}
	return 15 * time.Second
}
