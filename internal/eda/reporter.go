// Package eda implements the exploratory analysis stage. It only reads the
// cleaned dataset and reports what it finds through the logger.
package eda

import (
	"context"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nutricli/internal/config"
	"nutricli/internal/dataset"
	"nutricli/internal/exporter"
	"nutricli/internal/infrastructure"
	"nutricli/internal/stats"
)

// StageName identifies the EDA stage in logs and metrics
const StageName = "eda"

// Reporter logs an exploratory summary of a dataset
type Reporter struct {
	logger    *slog.Logger
	metrics   *infrastructure.StageMetrics
	tracer    trace.Tracer
	nutrients []string
}

// Option configures a Reporter
type Option func(*Reporter)

// WithMetrics reports stage counters to m
func WithMetrics(m *infrastructure.StageMetrics) Option {
	return func(r *Reporter) {
		r.metrics = m
	}
}

// WithNutrientColumns replaces the columns described individually
func WithNutrientColumns(columns []string) Option {
	return func(r *Reporter) {
		r.nutrients = columns
	}
}

// CategoryMean is the mean calorie count of one category
type CategoryMean struct {
	Category string
	Mean     float64
}

// Result is everything the reporter computed in one run
type Result struct {
	Rows    int
	Columns []dataset.ColumnInfo
	Summary []Description

	// Calories is nil when the dataset has no calories column
	Calories  *Description
	Nutrients []Description

	// HasCorrelation is false when calories or protein is missing
	Correlation    float64
	HasCorrelation bool

	CategoryMeans []CategoryMean
}

// NewReporter creates an EDA reporter
func NewReporter(logger *slog.Logger, opts ...Option) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reporter{
		logger:    logger,
		tracer:    otel.Tracer("nutricli/eda"),
		nutrients: config.DefaultEDANutrientColumns,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loads input and logs the analysis
func (r *Reporter) Run(ctx context.Context, input string) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "eda.Run", trace.WithAttributes(attribute.String("input", input)))
	defer span.End()

	start := time.Now()
	result, err := r.run(ctx, input)
	r.metrics.RecordRun(ctx, StageName, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		r.logger.ErrorContext(ctx, "An error occurred during the EDA process",
			slog.String("input", input),
			slog.String("error", err.Error()))
		return nil, err
	}
	return result, nil
}

func (r *Reporter) run(ctx context.Context, input string) (*Result, error) {
	r.logger.InfoContext(ctx, "Starting Exploratory Data Analysis (EDA)...")
	r.logger.InfoContext(ctx, "Loading cleaned data", slog.String("path", input))

	frame, err := dataset.ReadCSV(input)
	if err != nil {
		return nil, err
	}
	r.metrics.AddRowsRead(ctx, StageName, frame.Rows())
	r.logger.InfoContext(ctx, "Data loaded successfully",
		slog.Int("rows", frame.Rows()),
		slog.Int("columns", frame.Cols()))

	result, err := r.Analyze(ctx, frame)
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "EDA completed successfully.")
	return result, nil
}

// Analyze computes and logs the analysis of an in-memory frame
func (r *Reporter) Analyze(ctx context.Context, frame *dataset.Frame) (*Result, error) {
	result := &Result{
		Rows:    frame.Rows(),
		Columns: frame.Info(),
		Summary: DescribeFrame(frame),
	}

	r.logger.InfoContext(ctx, "Dataset overview",
		slog.Int("rows", result.Rows),
		slog.String("info", RenderOverview(frame)))
	r.logger.InfoContext(ctx, "Summary statistics",
		slog.String("table", RenderDescriptions(result.Summary)))

	if col := frame.Column(config.ColumnCalories); col != nil {
		r.logger.InfoContext(ctx, "Analyzing the distribution of calorie counts...")
		d := Describe(col)
		result.Calories = &d
		r.logger.InfoContext(ctx, "Calorie Statistics",
			slog.String("table", RenderDescriptions([]Description{d})))
	}

	for _, name := range r.nutrients {
		col := frame.Column(name)
		if col == nil {
			continue
		}
		r.logger.InfoContext(ctx, "Analyzing distribution", slog.String("column", name))
		d := Describe(col)
		result.Nutrients = append(result.Nutrients, d)
		r.logger.InfoContext(ctx, "Column statistics",
			slog.String("column", name),
			slog.String("table", RenderDescriptions([]Description{d})))
	}

	r.logger.InfoContext(ctx, "Exploring trends and patterns...")
	if frame.HasColumn(config.ColumnCalories) && frame.HasColumn(config.ColumnProtein) {
		corr, err := PairCorrelation(frame, config.ColumnCalories, config.ColumnProtein)
		if err != nil {
			return nil, err
		}
		result.Correlation = corr
		result.HasCorrelation = true
		r.logger.InfoContext(ctx, "Correlation between 'calories' and 'protein'",
			slog.String("correlation", formatCorrelation(corr)))
	}

	if frame.HasColumn(config.ColumnCategory) && frame.HasColumn(config.ColumnCalories) {
		r.logger.InfoContext(ctx, "Analyzing average calories by category...")
		means, err := CategoryMeans(frame, config.ColumnCategory, config.ColumnCalories)
		if err != nil {
			return nil, err
		}
		result.CategoryMeans = means

		rows := make([][]string, len(means))
		for i, m := range means {
			rows[i] = []string{m.Category, exporter.FormatFloat(m.Mean)}
		}
		r.logger.InfoContext(ctx, "Average Calories by Category",
			slog.String("table", exporter.RenderTable([]string{config.ColumnCategory, config.ColumnCalories}, rows)))
	}

	return result, nil
}

// PairCorrelation returns the Pearson correlation of two numeric columns
// over the rows where both are present
func PairCorrelation(f *dataset.Frame, a, b string) (float64, error) {
	colA, err := f.NumericColumn(a)
	if err != nil {
		return 0, err
	}
	colB, err := f.NumericColumn(b)
	if err != nil {
		return 0, err
	}

	var xs, ys []float64
	for i := 0; i < f.Rows(); i++ {
		if colA.Valid[i] && colB.Valid[i] {
			xs = append(xs, colA.Num[i])
			ys = append(ys, colB.Num[i])
		}
	}
	return stats.Correlation(xs, ys), nil
}

// CategoryMeans returns the mean of value per category, ordered by category.
// Categories without any value are left out.
func CategoryMeans(f *dataset.Frame, category, value string) ([]CategoryMean, error) {
	groups, err := f.GroupBy(category)
	if err != nil {
		return nil, err
	}
	means, ok, err := f.MeanBy(groups, value)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryMean, 0, len(groups))
	for i, g := range groups {
		if ok[i] {
			out = append(out, CategoryMean{Category: g.Key, Mean: means[i]})
		}
	}
	return out, nil
}

func formatCorrelation(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return exporter.FormatFixed(v, 2)
}
