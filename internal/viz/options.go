package viz

import (
	"errors"

	"gonum.org/v1/plot/vg"
)

var (
	// ErrNoData is returned when there is nothing to draw a panel for.
	ErrNoData = errors.New("viz: nothing to plot")

	ErrShapeChanged = errors.New("viz: frame shape differs from the first frame")
)

// Option adjusts the appearance of a figure. Each operation starts from its
// own defaults and applies options in order.
type Option func(*options)

type options struct {
	vmin, vmax     float64
	cmap           string
	width, height  vg.Length
	rows           int
	fontSize       float64
	zlim           *[2]float64
	rcount, ccount int
}

func apply(o options, opts []Option) options {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRange fixes the value range mapped onto the colour map.
func WithRange(vmin, vmax float64) Option {
	return func(o *options) { o.vmin, o.vmax = vmin, vmax }
}

func WithColorMap(name string) Option {
	return func(o *options) { o.cmap = name }
}

// WithSize sets the figure size in inches.
func WithSize(width, height float64) Option {
	return func(o *options) {
		o.width = vg.Length(width) * vg.Inch
		o.height = vg.Length(height) * vg.Inch
	}
}

// WithRows sets the number of panels per line in ShowGrid.
func WithRows(n int) Option {
	return func(o *options) { o.rows = n }
}

func WithFontSize(pt float64) Option {
	return func(o *options) { o.fontSize = pt }
}

// WithZLim clamps the vertical axis of Show3D.
func WithZLim(lo, hi float64) Option {
	return func(o *options) { o.zlim = &[2]float64{lo, hi} }
}

// WithSamples bounds the surface mesh of Show3D to rcount x ccount quads.
func WithSamples(rcount, ccount int) Option {
	return func(o *options) { o.rcount, o.ccount = rcount, ccount }
}
