package charts

import (
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	apperrors "nutricli/internal/errors"
)

// Figure is a chart that can draw itself onto a canvas
type Figure interface {
	Draw(dc draw.Canvas)
}

// Grid is a matrix of plots drawn as aligned tiles
type Grid struct {
	Plots [][]*plot.Plot
	Tiles draw.Tiles
}

// Draw aligns the axes of every tile and draws each plot in its cell
func (g *Grid) Draw(dc draw.Canvas) {
	canvases := plot.Align(g.Plots, g.Tiles, dc)
	for i, row := range g.Plots {
		for j, p := range row {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}
}

// SavePNG renders fig at the given size in inches and dpi and writes it to
// path, replacing any existing file
func SavePNG(fig Figure, path string, width, height float64, dpi int) error {
	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	fig.Draw(draw.New(img))

	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create chart file", err).WithContext("path", path)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return apperrors.NewRenderError("failed to encode chart", err).WithContext("path", path)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewStorageError("failed to close chart file", err).WithContext("path", path)
	}
	return nil
}
