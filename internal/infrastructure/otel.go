package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"nutricli/internal/config"
)

const (
	ServiceName = "nutricli"
	MeterName   = "nutricli"
)

// OTelProviders holds the OpenTelemetry providers for one stage run.
// Tracer and Meter are always usable; they are no-ops when disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Logger         *slog.Logger

	stage       string
	metricsFile string
	traceFile   *os.File
}

// InitializeOTel sets up tracing and metrics for a stage.
// Spans go to cfg.TraceFile as JSON; metrics are dumped in the Prometheus
// text format to <MetricsDir>/<stage>.prom on Shutdown.
func InitializeOTel(cfg config.TelemetryConfig, stage string, paths *config.Paths, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
		stage:  stage,
	}

	if !cfg.EnableTracing && !cfg.EnableMetrics {
		return providers, nil
	}

	res, err := createResource(cfg, stage)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, paths, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, paths, res, providers); err != nil {
			providers.Shutdown(ctx)
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.InfoContext(ctx, "OpenTelemetry initialization complete",
		slog.String("stage", stage),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg config.TelemetryConfig, stage string) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("pipeline.stage", stage),
	), nil
}

// initializeTracing sets up span export to the configured trace file
func initializeTracing(ctx context.Context, cfg config.TelemetryConfig, paths *config.Paths, res *resource.Resource, providers *OTelProviders) error {
	tracePath := paths.Resolve(cfg.TraceFile)
	if err := os.MkdirAll(filepath.Dir(tracePath), 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}

	file, err := os.OpenFile(tracePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.traceFile = file
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("trace_file", tracePath),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics wires an OpenTelemetry meter provider into a private
// Prometheus registry so the stage can dump it as a textfile on exit
func initializeMetrics(ctx context.Context, cfg config.TelemetryConfig, paths *config.Paths, res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
	providers.metricsFile = filepath.Join(paths.Resolve(cfg.MetricsDir), providers.stage+".prom")
	otel.SetMeterProvider(mp)

	providers.Logger.DebugContext(ctx, "Metrics initialized",
		slog.String("metrics_file", providers.metricsFile))

	return nil
}

// MetricsFile returns the textfile path written on Shutdown, or "" when
// metrics are disabled
func (p *OTelProviders) MetricsFile() string {
	return p.metricsFile
}

// Shutdown flushes spans, writes the metrics textfile and releases resources
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.Registry != nil && p.metricsFile != "" {
		if err := os.MkdirAll(filepath.Dir(p.metricsFile), 0755); err != nil {
			errs = append(errs, fmt.Errorf("metrics directory: %w", err))
		} else if err := prometheus.WriteToTextfile(p.metricsFile, p.Registry); err != nil {
			errs = append(errs, fmt.Errorf("metrics textfile: %w", err))
		}
	}

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if p.traceFile != nil {
		if err := p.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
		p.traceFile = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	return nil
}

// StageMetrics are the counters every stage reports
type StageMetrics struct {
	RowsRead          metric.Int64Counter
	RowsWritten       metric.Int64Counter
	DuplicatesRemoved metric.Int64Counter
	ValuesImputed     metric.Int64Counter
	OutliersClipped   metric.Int64Counter
	ChartsWritten     metric.Int64Counter
	StageRuns         metric.Int64Counter
	StageDuration     metric.Float64Histogram
}

// NewStageMetrics creates the pipeline instruments on meter
func NewStageMetrics(meter metric.Meter) (*StageMetrics, error) {
	m := &StageMetrics{}
	var err error

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.RowsRead, "nutri_rows_read_total", "Rows loaded from the stage input"},
		{&m.RowsWritten, "nutri_rows_written_total", "Rows written to the stage output"},
		{&m.DuplicatesRemoved, "nutri_duplicates_removed_total", "Exact duplicate rows dropped by the cleaner"},
		{&m.ValuesImputed, "nutri_values_imputed_total", "Missing cells filled by the cleaner"},
		{&m.OutliersClipped, "nutri_outliers_clipped_total", "Numeric cells clamped to the IQR bounds"},
		{&m.ChartsWritten, "nutri_charts_written_total", "Chart images saved by the visualizer"},
		{&m.StageRuns, "nutri_stage_runs_total", "Stage executions by outcome"},
	}
	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	m.StageDuration, err = meter.Float64Histogram(
		"nutri_stage_duration_seconds",
		metric.WithDescription("Stage wall time in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *StageMetrics) add(ctx context.Context, counter metric.Int64Counter, stage string, n int) {
	if m == nil || counter == nil || n == 0 {
		return
	}
	counter.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", stage)))
}

// AddRowsRead counts rows loaded by stage. All Add methods ignore a nil receiver.
func (m *StageMetrics) AddRowsRead(ctx context.Context, stage string, n int) {
	if m != nil {
		m.add(ctx, m.RowsRead, stage, n)
	}
}

// AddRowsWritten counts rows written by stage
func (m *StageMetrics) AddRowsWritten(ctx context.Context, stage string, n int) {
	if m != nil {
		m.add(ctx, m.RowsWritten, stage, n)
	}
}

// AddDuplicatesRemoved counts dropped duplicate rows
func (m *StageMetrics) AddDuplicatesRemoved(ctx context.Context, stage string, n int) {
	if m != nil {
		m.add(ctx, m.DuplicatesRemoved, stage, n)
	}
}

// AddValuesImputed counts filled cells
func (m *StageMetrics) AddValuesImputed(ctx context.Context, stage string, n int) {
	if m != nil {
		m.add(ctx, m.ValuesImputed, stage, n)
	}
}

// AddOutliersClipped counts clamped cells
func (m *StageMetrics) AddOutliersClipped(ctx context.Context, stage string, n int) {
	if m != nil {
		m.add(ctx, m.OutliersClipped, stage, n)
	}
}

// AddChartsWritten counts saved chart images
func (m *StageMetrics) AddChartsWritten(ctx context.Context, stage string, n int) {
	if m != nil {
		m.add(ctx, m.ChartsWritten, stage, n)
	}
}

// RecordRun records the outcome and duration of one stage execution
func (m *StageMetrics) RecordRun(ctx context.Context, stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	)
	m.StageRuns.Add(ctx, 1, attrs)
	m.StageDuration.Record(ctx, duration.Seconds(), attrs)
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}

	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
