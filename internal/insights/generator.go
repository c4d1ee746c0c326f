// Package insights implements the insights stage: calorie extremes and
// per-category nutrient means written to a CSV file.
package insights

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nutricli/internal/config"
	"nutricli/internal/dataset"
	apperrors "nutricli/internal/errors"
	"nutricli/internal/exporter"
	"nutricli/internal/infrastructure"
)

// StageName identifies the insights stage in logs and metrics
const StageName = "insights"

// Generator computes nutrition insights from the cleaned dataset
type Generator struct {
	logger  *slog.Logger
	cfg     config.InsightsConfig
	metrics *infrastructure.StageMetrics
	tracer  trace.Tracer
	csv     *exporter.CSVWriter
	xlsx    *exporter.XLSXWriter
}

// Option configures a Generator
type Option func(*Generator)

// WithMetrics reports stage counters to m
func WithMetrics(m *infrastructure.StageMetrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// Result is what one run produced
type Result struct {
	MaxRows *dataset.Frame
	MinRows *dataset.Frame
	Table   *Table
}

// NewGenerator creates a generator. Empty column settings fall back to
// the standard nutrition columns.
func NewGenerator(logger *slog.Logger, cfg config.InsightsConfig, opts ...Option) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CategoryColumn == "" {
		cfg.CategoryColumn = config.ColumnCategory
	}
	if cfg.CalorieColumn == "" {
		cfg.CalorieColumn = config.ColumnCalories
	}
	if len(cfg.NutrientColumns) == 0 {
		cfg.NutrientColumns = config.DefaultNutrientColumns
	}

	g := &Generator{
		logger: logger,
		cfg:    cfg,
		tracer: otel.Tracer("nutricli/insights"),
		csv:    exporter.NewCSVWriter(logger),
		xlsx:   exporter.NewXLSXWriter(logger),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate loads input, computes the insights and writes the category
// table to output (and to the configured workbook, if any)
func (g *Generator) Generate(ctx context.Context, input, output string) (*Result, error) {
	ctx, span := g.tracer.Start(ctx, "insights.Generate",
		trace.WithAttributes(attribute.String("input", input), attribute.String("output", output)))
	defer span.End()

	start := time.Now()
	result, err := g.generate(ctx, input, output)
	g.metrics.RecordRun(ctx, StageName, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		g.logger.ErrorContext(ctx, "An error occurred during the Nutrition-Based Insights process",
			slog.String("input", input),
			slog.String("error", err.Error()))
		return nil, err
	}
	return result, nil
}

func (g *Generator) generate(ctx context.Context, input, output string) (*Result, error) {
	g.logger.InfoContext(ctx, "Starting Nutrition-Based Insights")
	g.logger.InfoContext(ctx, "Loading cleaned data", slog.String("path", input))

	frame, err := dataset.ReadCSV(input)
	if err != nil {
		return nil, err
	}
	g.metrics.AddRowsRead(ctx, StageName, frame.Rows())
	g.logger.InfoContext(ctx, "Data loaded successfully",
		slog.Int("rows", frame.Rows()),
		slog.Int("columns", frame.Cols()))

	result := &Result{}

	if frame.HasColumn(g.cfg.CalorieColumn) {
		g.logger.InfoContext(ctx, "Identifying menu items with the highest and lowest calorie counts")
		result.MaxRows, result.MinRows, err = ExtremeRows(frame, g.cfg.CalorieColumn)
		if err != nil {
			return nil, err
		}
		g.logger.InfoContext(ctx, "Menu item(s) with the highest calorie count",
			slog.Int("count", result.MaxRows.Rows()),
			slog.String("rows", result.MaxRows.Render()))
		g.logger.InfoContext(ctx, "Menu item(s) with the lowest calorie count",
			slog.Int("count", result.MinRows.Rows()),
			slog.String("rows", result.MinRows.Render()))
	}

	if !frame.HasColumn(g.cfg.CategoryColumn) {
		return nil, apperrors.NewSchemaError(g.cfg.CategoryColumn, "not present; no category averages to save")
	}

	g.logger.InfoContext(ctx, "Calculating average nutritional content for popular categories")
	result.Table, err = GroupMeans(frame, g.cfg.CategoryColumn, g.cfg.NutrientColumns)
	if err != nil {
		return nil, err
	}
	g.logger.InfoContext(ctx, "Average nutritional content by category",
		slog.Int("categories", len(result.Table.Rows)),
		slog.String("table", exporter.RenderTable(result.Table.Headers(), result.Table.Records())))

	if err := g.WriteCSV(output, result.Table); err != nil {
		return nil, err
	}
	g.metrics.AddRowsWritten(ctx, StageName, len(result.Table.Rows))
	g.logger.InfoContext(ctx, "Nutrition insights saved", slog.String("path", output))

	if g.cfg.XLSXPath != "" {
		if err := g.WriteXLSX(g.cfg.XLSXPath, result.Table); err != nil {
			return nil, err
		}
		g.logger.InfoContext(ctx, "Nutrition insights workbook saved", slog.String("path", g.cfg.XLSXPath))
	}

	g.logger.InfoContext(ctx, "Nutrition-Based Insights completed successfully")
	return result, nil
}

// WriteCSV writes the category table to path
func (g *Generator) WriteCSV(path string, table *Table) error {
	if err := g.csv.WriteCSV(path, exporter.WriteOptions{
		Headers: table.Headers(),
		Records: table.Records(),
	}); err != nil {
		return apperrors.NewStorageError("failed to write insights CSV", err).WithContext("path", path)
	}
	return nil
}

// WriteXLSX writes the category table to a single-sheet workbook
func (g *Generator) WriteXLSX(path string, table *Table) error {
	if err := g.xlsx.WriteXLSX(path, "insights", exporter.WriteOptions{
		Headers: table.Headers(),
		Records: table.Records(),
	}); err != nil {
		return apperrors.NewStorageError("failed to write insights workbook", err).WithContext("path", path)
	}
	return nil
}
