package charts

import (
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"nutricli/internal/dataset"
	apperrors "nutricli/internal/errors"
	"nutricli/internal/insights"
	"nutricli/internal/stats"
)

// kdePoints is the resolution of density curves
const kdePoints = 200

var histogramColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}

// Capitalize upper-cases the first letter of s and lower-cases the rest
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func rotateXTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// BarChart plots the mean of each nutrient per category as grouped bars
func BarChart(f *dataset.Frame, category string, nutrients []string) (*plot.Plot, error) {
	table, err := insights.GroupMeans(f, category, nutrients)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Average Nutritional Content by Category"
	p.X.Label.Text = "Category"
	p.Y.Label.Text = "Average Value"
	p.Legend.Top = true

	n := len(nutrients)
	barWidth := vg.Points(float64(40) / float64(max(n, 1)))
	for j, nutrient := range nutrients {
		values := make(plotter.Values, len(table.Rows))
		for i, row := range table.Rows {
			if !math.IsNaN(row.Means[j]) {
				values[i] = row.Means[j]
			}
		}
		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, apperrors.NewRenderError("failed to build bar chart", err).WithContext("column", nutrient)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(j)
		bars.Offset = barWidth * vg.Length(float64(j)-float64(n-1)/2)
		p.Add(bars)
		p.Legend.Add(nutrient, bars)
	}

	names := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		names[i] = row.Category
	}
	p.NominalX(names...)
	rotateXTicks(p)
	return p, nil
}

// Histogram plots the distribution of column in bins bins with a Gaussian
// density curve scaled to the bin counts
func Histogram(f *dataset.Frame, column string, bins int) (*plot.Plot, error) {
	col, err := f.NumericColumn(column)
	if err != nil {
		return nil, err
	}
	values := col.NumericValues()
	if len(values) == 0 {
		return nil, apperrors.NewSchemaError(column, "has no values to plot")
	}

	p := plot.New()
	p.Title.Text = "Calorie Distribution"
	p.X.Label.Text = "Calories"
	p.Y.Label.Text = "Frequency"

	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, apperrors.NewRenderError("failed to build histogram", err).WithContext("column", column)
	}
	hist.FillColor = color.RGBA{R: 0, G: 0, B: 255, A: 110}
	hist.LineStyle.Color = histogramColor
	p.Add(hist)

	if kde := stats.NewKDE(values); kde != nil {
		xs, ys := kde.Curve(kdePoints)
		scale := float64(len(values)) * hist.Width
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i] = plotter.XY{X: xs[i], Y: ys[i] * scale}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, apperrors.NewRenderError("failed to build density curve", err).WithContext("column", column)
		}
		line.LineStyle.Color = histogramColor
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
	}
	return p, nil
}

// BoxPlot draws one box of column per category
func BoxPlot(f *dataset.Frame, category, column string) (*plot.Plot, error) {
	groups, err := f.GroupBy(category)
	if err != nil {
		return nil, err
	}
	col, err := f.NumericColumn(column)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = Capitalize(column) + " by Category"
	p.X.Label.Text = "Category"
	p.Y.Label.Text = Capitalize(column)

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Key

		var values plotter.Values
		for _, r := range g.Rows {
			if col.Valid[r] {
				values = append(values, col.Num[r])
			}
		}
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), values)
		if err != nil {
			return nil, apperrors.NewRenderError("failed to build box plot", err).
				WithContext("column", column).
				WithContext("category", g.Key)
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
	}

	p.NominalX(names...)
	rotateXTicks(p)
	return p, nil
}

// PairPlot builds a scatter matrix of vars coloured by hue. Diagonal cells
// hold a density curve per hue value.
func PairPlot(f *dataset.Frame, vars []string, hue string) (*Grid, error) {
	groups, err := f.GroupBy(hue)
	if err != nil {
		return nil, err
	}
	cols := make([]*dataset.Column, len(vars))
	for i, v := range vars {
		if cols[i], err = f.NumericColumn(v); err != nil {
			return nil, err
		}
	}

	n := len(vars)
	plots := make([][]*plot.Plot, n)
	for i := range plots {
		plots[i] = make([]*plot.Plot, n)
		for j := range plots[i] {
			p := plot.New()
			if i == n-1 {
				p.X.Label.Text = vars[j]
			}
			if j == 0 {
				p.Y.Label.Text = vars[i]
			}

			if i == j {
				if err := addDensities(p, cols[i], groups); err != nil {
					return nil, err
				}
			} else if err := addScatter(p, cols[j], cols[i], groups); err != nil {
				return nil, err
			}
			plots[i][j] = p
		}
	}

	// hue legend on the top right cell
	if n > 0 {
		legend := plots[0][n-1]
		legend.Legend.Top = true
		for gi, g := range groups {
			thumb, err := plotter.NewScatter(plotter.XYs{{}})
			if err != nil {
				return nil, apperrors.NewRenderError("failed to build legend", err)
			}
			thumb.GlyphStyle.Color = plotutil.Color(gi)
			thumb.GlyphStyle.Shape = draw.CircleGlyph{}
			legend.Legend.Add(g.Key, thumb)
		}
	}

	return &Grid{
		Plots: plots,
		Tiles: draw.Tiles{
			Rows:      n,
			Cols:      n,
			PadX:      vg.Millimeter * 2,
			PadY:      vg.Millimeter * 2,
			PadTop:    vg.Millimeter * 2,
			PadBottom: vg.Millimeter * 2,
			PadLeft:   vg.Millimeter * 2,
			PadRight:  vg.Millimeter * 2,
		},
	}, nil
}

func addScatter(p *plot.Plot, x, y *dataset.Column, groups []dataset.Group) error {
	for gi, g := range groups {
		var pts plotter.XYs
		for _, r := range g.Rows {
			if x.Valid[r] && y.Valid[r] {
				pts = append(pts, plotter.XY{X: x.Num[r], Y: y.Num[r]})
			}
		}
		if len(pts) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return apperrors.NewRenderError("failed to build scatter plot", err).
				WithContext("x", x.Name).
				WithContext("y", y.Name)
		}
		scatter.GlyphStyle.Color = plotutil.Color(gi)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
	}
	return nil
}

func addDensities(p *plot.Plot, col *dataset.Column, groups []dataset.Group) error {
	for gi, g := range groups {
		var values []float64
		for _, r := range g.Rows {
			if col.Valid[r] {
				values = append(values, col.Num[r])
			}
		}
		kde := stats.NewKDE(values)
		if kde == nil {
			continue
		}
		xs, ys := kde.Curve(kdePoints)
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return apperrors.NewRenderError("failed to build density curve", err).WithContext("column", col.Name)
		}
		line.LineStyle.Color = plotutil.Color(gi)
		p.Add(line)
	}
	return nil
}
