package figure

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
)

var ErrUnknownColorMap = errors.New("figure: unknown color map")

var colorMaps = map[string]func() palette.ColorMap{
	"rdbu":         func() palette.ColorMap { return reversed{moreland.SmoothBlueRed()} },
	"burd":         func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"coolwarm":     func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"magma":        moreland.ExtendedBlackBody,
	"inferno":      moreland.BlackBody,
	"kindlmann":    moreland.Kindlmann,
	"viridis":      moreland.ExtendedKindlmann,
	"purpleorange": func() palette.ColorMap { return moreland.SmoothPurpleOrange() },
}

// ColorMapNames lists the accepted names, case-insensitively.
func ColorMapNames() []string {
	return []string{"RdBu", "BuRd", "coolwarm", "magma", "inferno", "kindlmann", "viridis", "purpleorange"}
}

// ColorMap returns the named map spanning [vmin, vmax]. An empty or inverted
// range is widened to one unit above vmin.
func ColorMap(name string, vmin, vmax float64) (palette.ColorMap, error) {
	mk, ok := colorMaps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownColorMap, name, ColorMapNames())
	}
	if !(vmax > vmin) {
		vmax = vmin + 1
	}
	cm := mk()
	cm.SetMax(vmax)
	cm.SetMin(vmin)
	return cm, nil
}

// NewColorBar returns a narrow plot holding a vertical colour bar for cm,
// titled with label.
func NewColorBar(cm palette.ColorMap, label string) *plot.Plot {
	p := NewPlot()
	p.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})
	p.HideX()
	p.Title.Text = label
	return p
}

// reversed flips a colour map end to end.
type reversed struct {
	palette.ColorMap
}

func (r reversed) At(v float64) (color.Color, error) {
	return r.ColorMap.At(r.Min() + r.Max() - v)
}

func (r reversed) Palette(n int) palette.Palette {
	if n < 2 {
		n = 2
	}
	out := make(colors, n)
	step := (r.Max() - r.Min()) / float64(n-1)
	for i := range out {
		c, err := r.At(r.Min() + float64(i)*step)
		if err != nil {
			c = color.Transparent
		}
		out[i] = c
	}
	return out
}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }
