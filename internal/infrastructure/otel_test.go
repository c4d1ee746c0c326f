package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutricli/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	paths, err := config.GetPaths(config.PathsConfig{WorkDir: t.TempDir()})
	require.NoError(t, err)
	return paths
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOTelInitialization_Disabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{}, "cleaner", testPaths(t), quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.Equal(t, "", providers.MetricsFile())

	// no-op instruments still work
	m, err := NewStageMetrics(providers.Meter)
	require.NoError(t, err)
	m.AddRowsRead(context.Background(), "cleaner", 3)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelMetricsTextfile(t *testing.T) {
	paths := testPaths(t)
	cfg := config.TelemetryConfig{
		Environment:   "test",
		EnableMetrics: true,
		MetricsDir:    "metrics",
	}

	providers, err := InitializeOTel(cfg, "cleaner", paths, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.Registry)

	m, err := NewStageMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	m.AddRowsRead(ctx, "cleaner", 10)
	m.AddDuplicatesRemoved(ctx, "cleaner", 2)
	m.RecordRun(ctx, "cleaner", 150*time.Millisecond, nil)

	require.NoError(t, providers.Shutdown(ctx))

	want := filepath.Join(paths.WorkDir, "metrics", "cleaner.prom")
	assert.Equal(t, want, providers.MetricsFile())

	content, err := os.ReadFile(want)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "nutri_rows_read_total")
	assert.Contains(t, text, "nutri_duplicates_removed_total")
	assert.Contains(t, text, "nutri_stage_duration_seconds")
	assert.Contains(t, text, `status="success"`)
}

func TestOTelTracingFile(t *testing.T) {
	paths := testPaths(t)
	cfg := config.TelemetryConfig{
		Environment:   "test",
		EnableTracing: true,
		TraceFile:     "traces/spans.json",
		SampleRatio:   1.0,
	}

	providers, err := InitializeOTel(cfg, "report", paths, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "report.write")
	traceID := TraceIDFromContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	AddSpanEvent(ctx, "written", map[string]interface{}{"rows": 3, "path": "x.txt", "ok": true})
	RecordError(ctx, errors.New("boom"))
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))

	content, err := os.ReadFile(filepath.Join(paths.WorkDir, "traces", "spans.json"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "report.write")
	assert.Contains(t, string(content), traceID)
}

func TestTraceIDFromContext_NoSpan(t *testing.T) {
	assert.Equal(t, "", TraceIDFromContext(context.Background()))

	// helpers are safe without a recording span
	AddSpanEvent(context.Background(), "noop", nil)
	RecordError(context.Background(), errors.New("ignored"))
}

func TestStageMetrics_NilSafe(t *testing.T) {
	var m *StageMetrics
	m.AddRowsRead(context.Background(), "eda", 1)
	m.AddChartsWritten(context.Background(), "visualizer", 1)
	m.RecordRun(context.Background(), "eda", time.Second, errors.New("x"))
}
