// Package report implements the documentation stage: it summarizes the
// insights table into a fixed-format text report.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nutricli/internal/config"
	"nutricli/internal/dataset"
	apperrors "nutricli/internal/errors"
	"nutricli/internal/exporter"
	"nutricli/internal/infrastructure"
	"nutricli/internal/stats"
)

// StageName identifies the report writer in logs and metrics
const StageName = "report"

const benefits = "1. **For Customers**: Provides transparency, enabling informed dietary choices based on caloric and nutritional needs.\n" +
	"   - Helps health-conscious individuals choose low-calorie or high-protein items.\n" +
	"   - Assists customers with specific dietary preferences (e.g., low-fat or high-carb options).\n" +
	"2. **For McDonald's**: Enhances customer trust and promotes healthy eating initiatives.\n" +
	"   - Identifies popular low-calorie and high-nutrition items to promote them further.\n" +
	"   - Facilitates menu optimization by balancing health and taste preferences.\n"

const conclusion = "This nutritional analysis provides actionable insights to improve menu offerings and better serve the dietary needs of McDonald's diverse customer base."

// Findings are the key figures of the report
type Findings struct {
	HighestCategory string
	HighestCalories float64
	LowestCategory  string
	LowestCalories  float64

	AvgCalories      float64
	AvgTotalFat      float64
	AvgProtein       float64
	AvgCarbohydrates float64
}

// ComputeFindings extracts the findings from an insights table. The first
// row wins when several categories share the extreme calorie count.
func ComputeFindings(f *dataset.Frame) (*Findings, error) {
	category := f.Column(config.ColumnCategory)
	if category == nil {
		return nil, apperrors.NewSchemaError(config.ColumnCategory, "not present")
	}
	calories, err := f.NumericColumn(config.ColumnCalories)
	if err != nil {
		return nil, err
	}

	hi, lo := -1, -1
	for i := 0; i < f.Rows(); i++ {
		if !calories.Valid[i] {
			continue
		}
		if hi < 0 || calories.Num[i] > calories.Num[hi] {
			hi = i
		}
		if lo < 0 || calories.Num[i] < calories.Num[lo] {
			lo = i
		}
	}
	if hi < 0 {
		return nil, apperrors.NewSchemaError(config.ColumnCalories, "has no values")
	}

	findings := &Findings{
		HighestCategory: category.Cell(hi),
		HighestCalories: calories.Num[hi],
		LowestCategory:  category.Cell(lo),
		LowestCalories:  calories.Num[lo],
		AvgCalories:     stats.Mean(calories.NumericValues()),
	}

	averages := []struct {
		column string
		dst    *float64
	}{
		{config.ColumnTotalFat, &findings.AvgTotalFat},
		{config.ColumnProtein, &findings.AvgProtein},
		{config.ColumnCarbohydrates, &findings.AvgCarbohydrates},
	}
	for _, a := range averages {
		col, err := f.NumericColumn(a.column)
		if err != nil {
			return nil, err
		}
		*a.dst = stats.Mean(col.NumericValues())
	}
	return findings, nil
}

// Render produces the report text for findings
func Render(fd *Findings) string {
	var b strings.Builder
	b.WriteString("### Nutritional Analysis Report\n\n")
	b.WriteString("#### Key Findings:\n")
	fmt.Fprintf(&b, "- Category with the highest calories: %s (%s kcal)\n", fd.HighestCategory, exporter.FormatFloat(fd.HighestCalories))
	fmt.Fprintf(&b, "- Category with the lowest calories: %s (%s kcal)\n", fd.LowestCategory, exporter.FormatFloat(fd.LowestCalories))
	fmt.Fprintf(&b, "- Average Calories: %s kcal\n", fixed2(fd.AvgCalories))
	fmt.Fprintf(&b, "- Average Total Fat: %s g\n", fixed2(fd.AvgTotalFat))
	fmt.Fprintf(&b, "- Average Protein: %s g\n", fixed2(fd.AvgProtein))
	fmt.Fprintf(&b, "- Average Carbohydrates: %s g\n\n", fixed2(fd.AvgCarbohydrates))
	b.WriteString("#### Benefits of Nutritional Analysis:\n")
	b.WriteString(benefits)
	b.WriteString("\n### Conclusion:\n")
	b.WriteString(conclusion)
	return b.String()
}

// fixed2 formats an average with two decimals; an empty column averages to nan
func fixed2(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return exporter.FormatFixed(v, 2)
}

// Writer turns the insights file into the analysis report
type Writer struct {
	logger  *slog.Logger
	metrics *infrastructure.StageMetrics
	tracer  trace.Tracer
}

// Option configures a Writer
type Option func(*Writer)

// WithMetrics reports stage counters to m
func WithMetrics(m *infrastructure.StageMetrics) Option {
	return func(w *Writer) {
		w.metrics = m
	}
}

// NewWriter creates a report writer
func NewWriter(logger *slog.Logger, opts ...Option) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		logger: logger,
		tracer: otel.Tracer("nutricli/report"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write loads the insights at input and writes the report to output
func (w *Writer) Write(ctx context.Context, input, output string) (*Findings, error) {
	ctx, span := w.tracer.Start(ctx, "report.Write",
		trace.WithAttributes(attribute.String("input", input), attribute.String("output", output)))
	defer span.End()

	start := time.Now()
	findings, err := w.write(ctx, input, output)
	w.metrics.RecordRun(ctx, StageName, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		w.logger.ErrorContext(ctx, "An error occurred during Documentation and Reporting",
			slog.String("input", input),
			slog.String("error", err.Error()))
		return nil, err
	}
	return findings, nil
}

func (w *Writer) write(ctx context.Context, input, output string) (*Findings, error) {
	w.logger.InfoContext(ctx, "Loading nutritional insights data", slog.String("path", input))
	frame, err := dataset.ReadCSV(input)
	if err != nil {
		return nil, err
	}
	w.metrics.AddRowsRead(ctx, StageName, frame.Rows())
	w.logger.InfoContext(ctx, "Data loaded successfully",
		slog.Int("rows", frame.Rows()),
		slog.Int("columns", frame.Cols()))

	w.logger.InfoContext(ctx, "Generating key findings...")
	findings, err := ComputeFindings(frame)
	if err != nil {
		return nil, err
	}
	w.logger.InfoContext(ctx, "Key findings generated successfully.",
		slog.String("highest", findings.HighestCategory),
		slog.String("lowest", findings.LowestCategory))

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, apperrors.NewStorageError("failed to create report directory", err).WithContext("path", dir)
		}
	}
	if err := os.WriteFile(output, []byte(Render(findings)), 0644); err != nil {
		return nil, apperrors.NewStorageError("failed to write report", err).WithContext("path", output)
	}

	w.logger.InfoContext(ctx, "Documentation and Reporting completed successfully", slog.String("path", output))
	return findings, nil
}
