package viz

import (
	"fmt"

	"github.com/san-kum/fkviz/internal/field"
	"github.com/san-kum/fkviz/internal/figure"
	"gonum.org/v1/plot/vg"
)

func gridDefaults() options {
	return options{
		vmin:     -85,
		vmax:     15,
		cmap:     "magma",
		rows:     5,
		fontSize: figure.DefaultFontSize,
	}
}

// GridLayout returns the figure shape ShowGrid uses for n frames: lines of
// panels, and panels per line. At least two panels fit on a line.
func GridLayout(n, rows int) (lines, perLine int) {
	if rows < 1 {
		rows = 1
	}
	lines = (n + rows - 1) / rows
	perLine = max(2, min(rows, n))
	if lines < 1 {
		lines = 1
	}
	return lines, perLine
}

// ShowGrid draws each frame in its own panel, filling lines of WithRows
// panels. Panel i is titled "t: times[i]" when times has that many entries.
// Colour bars are labelled in mV.
//
// ShowGrid sets the process-wide font size and leaves it in place for
// every figure drawn afterwards.
func ShowGrid(frames []*field.Grid, times []float64, opts ...Option) (*figure.Figure, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrNoData)
	}
	o := apply(gridDefaults(), opts)
	cm, err := figure.ColorMap(o.cmap, o.vmin, o.vmax)
	if err != nil {
		return nil, err
	}
	figure.SetFontSize(o.fontSize)

	lines, perLine := GridLayout(len(frames), o.rows)
	if o.width == 0 || o.height == 0 {
		o.width = vg.Length(perLine) * 3 * vg.Inch
		o.height = vg.Length(lines) * 2.6 * vg.Inch
	}

	f := figure.New(lines, perLine, o.width, o.height)
	for i, g := range frames {
		title := ""
		if i < len(times) {
			title = fmt.Sprintf("t: %g", times[i])
		}
		f.Set(i, heatPanel(&gridXYZ{g: g}, heatSpec{
			title:    title,
			barLabel: "mV",
			cmap:     cm,
			cmTicks:  true,
		}))
	}
	return f, nil
}
