package viz

import (
	"image/color"

	"github.com/san-kum/fkviz/internal/field"
	"github.com/san-kum/fkviz/internal/figure"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
)

// gridXYZ exposes a grid to plotter.HeatMap with column index as x and row
// index as y. Replacing g redraws the heatmap with new data of the same shape.
type gridXYZ struct {
	g *field.Grid
}

func (a *gridXYZ) Dims() (c, r int)   { return a.g.Cols, a.g.Rows }
func (a *gridXYZ) Z(c, r int) float64 { return a.g.At(r, c) }
func (a *gridXYZ) X(c int) float64    { return float64(c) }
func (a *gridXYZ) Y(r int) float64    { return float64(r) }

const paletteSize = 255

type heatSpec struct {
	title    string
	barLabel string
	cmap     palette.ColorMap
	cmTicks  bool
}

// heatPanel draws data as an image: row 0 at the top, values clamped to the
// colour map range, with a colour bar alongside.
func heatPanel(data *gridXYZ, s heatSpec) *figure.Panel {
	pal := s.cmap.Palette(paletteSize)
	colors := pal.Colors()
	h := &plotter.HeatMap{
		GridXYZ:   data,
		Palette:   pal,
		Min:       s.cmap.Min(),
		Max:       s.cmap.Max(),
		Underflow: colors[0],
		Overflow:  colors[len(colors)-1],
		NaN:       color.Transparent,
	}

	p := figure.NewPlot()
	p.Title.Text = s.title
	p.Add(h)
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	if s.cmTicks {
		p.X.Tick.Marker = figure.CentimeterTicks()
		p.Y.Tick.Marker = figure.CentimeterTicks()
		p.X.Label.Text = "x [cm]"
		p.Y.Label.Text = "y [cm]"
	}

	return &figure.Panel{
		Plot:     p,
		ColorBar: figure.NewColorBar(s.cmap, s.barLabel),
		Term:     &heatTerm{data: data, cmap: s.cmap},
	}
}
