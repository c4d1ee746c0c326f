// Package charts implements the visualizer stage. Every chart is written to
// the output directory as a PNG as soon as it is built.
package charts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nutricli/internal/config"
	"nutricli/internal/dataset"
	apperrors "nutricli/internal/errors"
	"nutricli/internal/infrastructure"
)

// StageName identifies the visualizer in logs and metrics
const StageName = "visualizer"

// Output file names
const (
	BarChartFile  = "average_nutrition_by_category.png"
	HistogramFile = "calorie_distribution.png"
	PairPlotFile  = "pairplot_nutrition.png"
)

// pairPlotFacet is the edge of one scatter matrix cell, in inches
const pairPlotFacet = 2.5

// BoxPlotFile returns the file name of the box plot for column
func BoxPlotFile(column string) string {
	return fmt.Sprintf("boxplot_%s_by_category.png", column)
}

// Visualizer renders the chart set of a cleaned dataset
type Visualizer struct {
	logger    *slog.Logger
	cfg       config.ChartsConfig
	metrics   *infrastructure.StageMetrics
	tracer    trace.Tracer
	nutrients []string
	pairVars  []string
}

// Option configures a Visualizer
type Option func(*Visualizer)

// WithMetrics reports stage counters to m
func WithMetrics(m *infrastructure.StageMetrics) Option {
	return func(v *Visualizer) {
		v.metrics = m
	}
}

// WithNutrientColumns replaces the columns of the bar chart and box plots
func WithNutrientColumns(columns []string) Option {
	return func(v *Visualizer) {
		v.nutrients = columns
	}
}

// NewVisualizer creates a visualizer. Zero sizes fall back to the defaults.
func NewVisualizer(logger *slog.Logger, cfg config.ChartsConfig, opts ...Option) *Visualizer {
	if logger == nil {
		logger = slog.Default()
	}
	def := config.Default().Charts
	if cfg.BarWidth <= 0 {
		cfg.BarWidth = def.BarWidth
	}
	if cfg.BarHeight <= 0 {
		cfg.BarHeight = def.BarHeight
	}
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = def.HistogramBins
	}
	if cfg.DPI <= 0 {
		cfg.DPI = def.DPI
	}

	v := &Visualizer{
		logger:    logger,
		cfg:       cfg,
		tracer:    otel.Tracer("nutricli/charts"),
		nutrients: config.DefaultNutrientColumns,
		pairVars:  config.DefaultPairPlotColumns,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run loads input and writes every applicable chart into outputDir. It
// returns the paths written so far, even on error.
func (v *Visualizer) Run(ctx context.Context, input, outputDir string) ([]string, error) {
	ctx, span := v.tracer.Start(ctx, "charts.Run",
		trace.WithAttributes(attribute.String("input", input), attribute.String("output_dir", outputDir)))
	defer span.End()

	start := time.Now()
	written, err := v.run(ctx, input, outputDir)
	v.metrics.AddChartsWritten(ctx, StageName, len(written))
	v.metrics.RecordRun(ctx, StageName, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		v.logger.ErrorContext(ctx, "An error occurred during the Data Visualization process",
			slog.String("input", input),
			slog.Int("charts_written", len(written)),
			slog.String("error", err.Error()))
		return written, err
	}
	return written, nil
}

func (v *Visualizer) run(ctx context.Context, input, outputDir string) ([]string, error) {
	v.logger.InfoContext(ctx, "Starting Data Visualization...")
	v.logger.InfoContext(ctx, "Loading cleaned data", slog.String("path", input))

	frame, err := dataset.ReadCSV(input)
	if err != nil {
		return nil, err
	}
	v.metrics.AddRowsRead(ctx, StageName, frame.Rows())
	v.logger.InfoContext(ctx, "Data loaded successfully",
		slog.Int("rows", frame.Rows()),
		slog.Int("columns", frame.Cols()))

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create visualizations directory", err).
			WithContext("path", outputDir)
	}

	written, err := v.Render(ctx, frame, outputDir)
	if err != nil {
		return written, err
	}

	v.logger.InfoContext(ctx, "Data Visualization completed successfully",
		slog.String("output_dir", outputDir),
		slog.Int("charts", len(written)))
	return written, nil
}

// Render writes the charts for frame into outputDir, stopping at the first
// failure
func (v *Visualizer) Render(ctx context.Context, frame *dataset.Frame, outputDir string) ([]string, error) {
	var written []string
	save := func(fig Figure, name string, width, height float64) error {
		path := filepath.Join(outputDir, name)
		if err := SavePNG(fig, path, width, height, v.cfg.DPI); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if frame.HasColumn(config.ColumnCategory) {
		v.logger.InfoContext(ctx, "Creating bar chart for average nutritional content by category...")
		p, err := BarChart(frame, config.ColumnCategory, v.nutrients)
		if err != nil {
			return written, err
		}
		if err := save(p, BarChartFile, v.cfg.BarWidth, v.cfg.BarHeight); err != nil {
			return written, err
		}
		v.logger.InfoContext(ctx, fmt.Sprintf("Bar chart saved as '%s'.", BarChartFile))
	}

	if frame.HasColumn(config.ColumnCalories) {
		v.logger.InfoContext(ctx, "Creating histogram for calorie distribution...")
		p, err := Histogram(frame, config.ColumnCalories, v.cfg.HistogramBins)
		if err != nil {
			return written, err
		}
		if err := save(p, HistogramFile, v.cfg.Width, v.cfg.Height); err != nil {
			return written, err
		}
		v.logger.InfoContext(ctx, fmt.Sprintf("Histogram saved as '%s'.", HistogramFile))
	}

	v.logger.InfoContext(ctx, "Creating box plots for nutritional content...")
	for _, col := range v.nutrients {
		if !frame.HasColumn(col) {
			continue
		}
		p, err := BoxPlot(frame, config.ColumnCategory, col)
		if err != nil {
			return written, err
		}
		name := BoxPlotFile(col)
		if err := save(p, name, v.cfg.Width, v.cfg.Height); err != nil {
			return written, err
		}
		v.logger.InfoContext(ctx, fmt.Sprintf("Box plot for '%s' saved as '%s'.", col, name))
	}

	v.logger.InfoContext(ctx, "Creating pair plot for nutritional columns...")
	grid, err := PairPlot(frame, v.pairVars, config.ColumnCategory)
	if err != nil {
		return written, err
	}
	edge := pairPlotFacet * float64(len(v.pairVars))
	if err := save(grid, PairPlotFile, edge, edge); err != nil {
		return written, err
	}
	v.logger.InfoContext(ctx, fmt.Sprintf("Pair plot saved as '%s'.", PairPlotFile))

	return written, nil
}
