package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nutricli/internal/config"
	"nutricli/internal/dataset"
	"nutricli/internal/exporter"
	"nutricli/internal/infrastructure"
	"nutricli/internal/stats"
)

// StageName identifies the cleaner in logs and metrics
const StageName = "cleaner"

// Cleaner loads a raw table, repairs it and writes the cleaned copy
type Cleaner struct {
	logger     *slog.Logger
	cfg        config.CleaningConfig
	metrics    *infrastructure.StageMetrics
	tracer     trace.Tracer
	dateParser func(string) (time.Time, error)
}

// Option configures a Cleaner
type Option func(*Cleaner)

// WithMetrics reports cleaning counters to m
func WithMetrics(m *infrastructure.StageMetrics) Option {
	return func(c *Cleaner) {
		c.metrics = m
	}
}

// NewCleaner creates a cleaner. A zero IQR multiplier falls back to 1.5.
func NewCleaner(logger *slog.Logger, cfg config.CleaningConfig, opts ...Option) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IQRMultiplier <= 0 {
		cfg.IQRMultiplier = config.DefaultIQRMultiplier
	}
	if len(cfg.NullTokens) == 0 {
		cfg.NullTokens = config.DefaultNullTokens
	}

	c := &Cleaner{
		logger: logger,
		cfg:    cfg,
		tracer: otel.Tracer("nutricli/cleaning"),
		dateParser: func(s string) (time.Time, error) {
			return dateparse.ParseIn(s, time.UTC)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean reads input, cleans it and writes the result to output.
// Any failure is logged and returned; no output is written on error.
func (c *Cleaner) Clean(ctx context.Context, input, output string) (*Summary, error) {
	ctx, span := c.tracer.Start(ctx, "cleaning.Clean",
		trace.WithAttributes(attribute.String("input", input), attribute.String("output", output)))
	defer span.End()

	start := time.Now()
	summary, err := c.clean(ctx, input, output)
	c.metrics.RecordRun(ctx, StageName, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		c.logger.ErrorContext(ctx, "An error occurred during the cleaning process",
			slog.String("input", input),
			slog.String("error", err.Error()))
		return nil, err
	}
	summary.Duration = time.Since(start)
	return summary, nil
}

func (c *Cleaner) clean(ctx context.Context, input, output string) (*Summary, error) {
	c.logger.InfoContext(ctx, "Starting the cleaning process")
	c.logger.InfoContext(ctx, "Loading data", slog.String("path", input))

	readOpts := []dataset.ReadOption{dataset.WithNullTokens(c.cfg.NullTokens)}
	if c.cfg.Sheet != "" {
		readOpts = append(readOpts, dataset.WithSheet(c.cfg.Sheet))
	}
	frame, err := dataset.ReadFile(input, readOpts...)
	if err != nil {
		return nil, err
	}
	c.metrics.AddRowsRead(ctx, StageName, frame.Rows())

	c.logger.InfoContext(ctx, "Data loaded successfully",
		slog.Int("rows", frame.Rows()),
		slog.Int("columns", frame.Cols()))
	c.logger.InfoContext(ctx, "Initial data info", slog.Any("columns", frame.Info()))

	cleaned, summary, err := c.CleanFrame(ctx, frame)
	if err != nil {
		return nil, err
	}
	summary.Input = input
	summary.Output = output

	c.logger.InfoContext(ctx, "Saving cleaned data", slog.String("path", output))
	if err := dataset.WriteCSV(output, cleaned); err != nil {
		return nil, err
	}
	c.metrics.AddRowsWritten(ctx, StageName, cleaned.Rows())

	c.logger.InfoContext(ctx, "Cleaned data saved successfully",
		slog.String("path", output),
		slog.Int("rows", cleaned.Rows()))
	c.logger.InfoContext(ctx, "Final data info", slog.Any("columns", cleaned.Info()))

	return summary, nil
}

// CleanFrame applies every cleaning step to a copy of f, in order: column
// names, missing values, duplicates, datetime coercion, outliers.
func (c *Cleaner) CleanFrame(ctx context.Context, f *dataset.Frame) (*dataset.Frame, *Summary, error) {
	out := f.Clone()
	summary := &Summary{RowsIn: f.Rows(), Columns: f.Cols()}

	c.logger.InfoContext(ctx, "Standardizing column names")
	if err := StandardizeColumnNames(out); err != nil {
		return nil, nil, err
	}
	c.logger.InfoContext(ctx, "Column names standardized", slog.Any("columns", out.Names()))

	c.logger.InfoContext(ctx, "Handling missing values")
	summary.Imputations = c.fillMissing(ctx, out)

	c.logger.InfoContext(ctx, "Removing duplicates")
	out, summary.DuplicatesRemoved = DropDuplicates(out)
	c.metrics.AddDuplicatesRemoved(ctx, StageName, summary.DuplicatesRemoved)
	c.logger.InfoContext(ctx, "Removed duplicate rows", slog.Int("count", summary.DuplicatesRemoved))
	infrastructure.AddSpanEvent(ctx, "duplicates_removed", map[string]interface{}{
		"count":     summary.DuplicatesRemoved,
		"rows_left": out.Rows(),
	})

	c.logger.InfoContext(ctx, "Converting data types where applicable")
	summary.DatetimeColumns = c.coerceDatetimes(ctx, out)

	c.logger.InfoContext(ctx, "Handling outliers")
	summary.Outliers = c.clipOutliers(ctx, out)
	infrastructure.AddSpanEvent(ctx, "outliers_clipped", map[string]interface{}{
		"columns": len(summary.Outliers),
		"values":  summary.OutliersClipped(),
	})

	summary.RowsOut = out.Rows()
	return out, summary, nil
}

// StandardizeColumnNames trims, lowercases and replaces spaces with
// underscores in every column name
func StandardizeColumnNames(f *dataset.Frame) error {
	return f.RenameColumns(NormalizeName)
}

// NormalizeName is the column name rule used by StandardizeColumnNames
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// fillMissing imputes text columns with their mode and numeric columns with
// their median. Fill values come from the column as loaded.
func (c *Cleaner) fillMissing(ctx context.Context, f *dataset.Frame) []Imputation {
	var imputations []Imputation
	for _, col := range f.Columns() {
		missing := col.NullCount()
		if missing == 0 {
			continue
		}

		imp := Imputation{Column: col.Name, Count: missing}
		switch col.Kind {
		case dataset.Numeric:
			values := col.NumericValues()
			if len(values) == 0 {
				c.logger.WarnContext(ctx, "Column has no values to impute from",
					slog.String("column", col.Name))
				continue
			}
			median := stats.Median(values)
			for i := range col.Num {
				if !col.Valid[i] {
					col.Num[i] = median
					col.Valid[i] = true
				}
			}
			imp.Strategy = StrategyMedian
			imp.Value = exporter.FormatFloat(median)
			c.logger.InfoContext(ctx, "Filled missing values with median",
				slog.String("column", col.Name),
				slog.Float64("median", median),
				slog.Int("count", missing))
		case dataset.Datetime:
			// datetimes only appear after coercion; nothing to fill here
			continue
		default:
			mode, _ := stats.ModeString(col.Strings())
			for i := range col.Text {
				if !col.Valid[i] {
					col.Text[i] = mode
					col.Valid[i] = true
				}
			}
			imp.Strategy = StrategyMode
			imp.Value = mode
			c.logger.InfoContext(ctx, "Filled missing values with mode",
				slog.String("column", col.Name),
				slog.String("mode", mode),
				slog.Int("count", missing))
		}

		c.metrics.AddValuesImputed(ctx, StageName, missing)
		imputations = append(imputations, imp)
	}
	return imputations
}

// DropDuplicates removes exact duplicate rows, keeping the first occurrence
func DropDuplicates(f *dataset.Frame) (*dataset.Frame, int) {
	seen := make(map[string]struct{}, f.Rows())
	keep := make([]int, 0, f.Rows())
	for i := 0; i < f.Rows(); i++ {
		key := f.RowKey(i)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	if len(keep) == f.Rows() {
		return f, 0
	}
	return f.SelectRows(keep), f.Rows() - len(keep)
}

// coerceDatetimes converts text columns whose every present value parses
// as a date or timestamp. A single unparseable value keeps the whole
// column as text.
func (c *Cleaner) coerceDatetimes(ctx context.Context, f *dataset.Frame) []string {
	var converted []string
	for _, col := range f.Columns() {
		if col.Kind != dataset.Text {
			continue
		}

		times, ok := c.parseColumn(col)
		if !ok {
			c.logger.InfoContext(ctx, "Column could not be converted to datetime",
				slog.String("column", col.Name))
			continue
		}

		if err := f.SetColumn(dataset.NewDatetimeColumn(col.Name, times, col.Valid)); err != nil {
			c.logger.WarnContext(ctx, "Failed to replace column",
				slog.String("column", col.Name),
				slog.String("error", err.Error()))
			continue
		}
		converted = append(converted, col.Name)
		c.logger.InfoContext(ctx, "Converted column to datetime", slog.String("column", col.Name))
	}
	return converted
}

func (c *Cleaner) parseColumn(col *dataset.Column) ([]time.Time, bool) {
	if col.Count() == 0 {
		return nil, false
	}
	times := make([]time.Time, col.Len())
	for i, s := range col.Text {
		if !col.Valid[i] {
			continue
		}
		t, err := c.dateParser(strings.TrimSpace(s))
		if err != nil {
			return nil, false
		}
		times[i] = t
	}
	return times, true
}

// clipOutliers clamps every numeric column to its IQR fences. Fences come
// from the column before clamping.
func (c *Cleaner) clipOutliers(ctx context.Context, f *dataset.Frame) []OutlierReport {
	var reports []OutlierReport
	for _, col := range f.Columns() {
		if col.Kind != dataset.Numeric {
			continue
		}
		values := col.NumericValues()
		if len(values) == 0 {
			continue
		}

		bounds := stats.IQRBounds(values, c.cfg.IQRMultiplier)
		clipped := 0
		for i, v := range col.Num {
			if !col.Valid[i] || bounds.Contains(v) {
				continue
			}
			col.Num[i] = stats.Clamp(v, bounds)
			clipped++
		}

		c.metrics.AddOutliersClipped(ctx, StageName, clipped)
		c.logger.InfoContext(ctx, "Handled outliers",
			slog.String("column", col.Name),
			slog.Int("count", clipped),
			slog.Float64("lower_bound", bounds.Lower),
			slog.Float64("upper_bound", bounds.Upper))

		reports = append(reports, OutlierReport{Column: col.Name, Bounds: bounds, Count: clipped})
	}
	return reports
}

// String renders a one-line summary for console output
func (s *Summary) String() string {
	return fmt.Sprintf("rows %d -> %d, duplicates removed %d, columns imputed %d, datetime columns %d, outliers clipped %d",
		s.RowsIn, s.RowsOut, s.DuplicatesRemoved, len(s.Imputations), len(s.DatetimeColumns), s.OutliersClipped())
}
