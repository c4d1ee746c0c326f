package eda

import (
	"math"

	"nutricli/internal/dataset"
	"nutricli/internal/exporter"
	"nutricli/internal/stats"
)

// Description holds the summary statistics of one column. Numeric columns
// fill the moment and quartile fields; text and datetime columns fill
// Unique, Top and Freq.
type Description struct {
	Column string
	Kind   dataset.Kind
	Count  int

	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64

	Unique int
	Top    string
	Freq   int
}

// numericStats and categoricalStats are the row labels of a description,
// in display order
var (
	numericStats     = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	categoricalStats = []string{"count", "unique", "top", "freq"}
)

// Describe computes the description of col over its present values
func Describe(col *dataset.Column) Description {
	d := Description{Column: col.Name, Kind: col.Kind, Count: col.Count()}

	if col.Kind == dataset.Numeric {
		values := col.NumericValues()
		d.Mean = stats.Mean(values)
		d.Std = stats.StdDev(values)
		d.Min = stats.Min(values)
		d.Q1, d.Median, d.Q3 = stats.Quartiles(values)
		d.Max = stats.Max(values)
		return d
	}

	values := col.Strings()
	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	d.Unique = len(distinct)
	d.Top, d.Freq = stats.ModeString(values)
	return d
}

// DescribeFrame describes every column of f in column order
func DescribeFrame(f *dataset.Frame) []Description {
	out := make([]Description, 0, f.Cols())
	for _, col := range f.Columns() {
		out = append(out, Describe(col))
	}
	return out
}

// Value returns the formatted statistic named stat, or "NaN" when the
// statistic does not apply to the column
func (d Description) Value(stat string) string {
	if d.Kind == dataset.Numeric {
		switch stat {
		case "count":
			return fixed(float64(d.Count))
		case "mean":
			return fixed(d.Mean)
		case "std":
			return fixed(d.Std)
		case "min":
			return fixed(d.Min)
		case "25%":
			return fixed(d.Q1)
		case "50%":
			return fixed(d.Median)
		case "75%":
			return fixed(d.Q3)
		case "max":
			return fixed(d.Max)
		}
		return "NaN"
	}

	switch stat {
	case "count":
		return exporter.FormatInt(d.Count)
	case "unique":
		return exporter.FormatInt(d.Unique)
	case "top":
		if d.Count == 0 {
			return "NaN"
		}
		return d.Top
	case "freq":
		if d.Count == 0 {
			return "NaN"
		}
		return exporter.FormatInt(d.Freq)
	}
	return "NaN"
}

func fixed(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return exporter.FormatFixed(v, 6)
}

// RenderDescriptions lays the descriptions out with one column per
// described column and one row per statistic. Statistic rows that apply to
// none of the columns are omitted.
func RenderDescriptions(descs []Description) string {
	var hasNumeric, hasCategorical bool
	for _, d := range descs {
		if d.Kind == dataset.Numeric {
			hasNumeric = true
		} else {
			hasCategorical = true
		}
	}

	var labels []string
	switch {
	case hasNumeric && hasCategorical:
		labels = append(labels, categoricalStats...)
		labels = append(labels, numericStats[1:]...)
	case hasCategorical:
		labels = categoricalStats
	default:
		labels = numericStats
	}

	headers := make([]string, 0, len(descs)+1)
	headers = append(headers, "")
	for _, d := range descs {
		headers = append(headers, d.Column)
	}

	rows := make([][]string, 0, len(labels))
	for _, label := range labels {
		row := make([]string, 0, len(descs)+1)
		row = append(row, label)
		for _, d := range descs {
			row = append(row, d.Value(label))
		}
		rows = append(rows, row)
	}
	return exporter.RenderTable(headers, rows)
}

// RenderOverview lays out the per-column kind and non-null count
func RenderOverview(f *dataset.Frame) string {
	info := f.Info()
	rows := make([][]string, 0, len(info))
	for i, ci := range info {
		rows = append(rows, []string{
			exporter.FormatInt(i),
			ci.Name,
			exporter.FormatInt(ci.NonNull) + " non-null",
			ci.Kind,
		})
	}
	return exporter.RenderTable([]string{"#", "Column", "Non-Null Count", "Dtype"}, rows)
}
