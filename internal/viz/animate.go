package viz

import (
	"fmt"
	"image"
	"iter"

	"github.com/san-kum/fkviz/internal/field"
	"github.com/san-kum/fkviz/internal/figure"
)

// Animation replays a sequence of states on one figure. Moving to a frame
// swaps the data shown by the existing panels and retitles the figure; no
// panels are added or removed.
type Animation struct {
	Figure *figure.Figure

	seq   field.Sequence
	times []float64
	data  []*gridXYZ
	frame int
}

// AnimateState builds a figure with one heatmap per field of seq[0] and
// returns an Animation over every state of seq. An empty times labels
// frames by index; a shorter times labels only the first frames.
//
// The figure is built with the png backend active, and the previous
// backend is restored before returning.
func AnimateState(seq field.Sequence, times []float64, opts ...Option) (*Animation, error) {
	if len(seq) == 0 || seq[0].Len() == 0 {
		return nil, fmt.Errorf("%w: empty sequence", ErrNoData)
	}
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	rows, cols := seq[0].Shape()
	for i, s := range seq {
		if r, c := s.Shape(); r != rows || c != cols {
			return nil, fmt.Errorf("%w: state %d is %dx%d, want %dx%d", ErrShapeChanged, i, r, c, rows, cols)
		}
	}
	if len(times) == 0 {
		times = field.IndexTimes(len(seq))
	}

	a := &Animation{seq: seq, times: times}
	err := figure.WithBackend("png", func() error {
		o := apply(stateDefaults(), opts)
		cm, err := figure.ColorMap(o.cmap, o.vmin, o.vmax)
		if err != nil {
			return err
		}
		first := seq[0]
		a.Figure = figure.New(1, first.Len(), o.width, o.height)
		for i := 0; i < first.Len(); i++ {
			d := &gridXYZ{g: first.Field(i)}
			a.data = append(a.data, d)
			a.Figure.Set(i, heatPanel(d, heatSpec{
				title:   first.Name(i),
				cmap:    cm,
				cmTicks: true,
			}))
		}
		a.Frame(0)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Animation) Len() int { return len(a.seq) }

// Current returns the index of the frame on display.
func (a *Animation) Current() int { return a.frame }

// Time returns the label of frame t, if one was supplied.
func (a *Animation) Time(t int) (float64, bool) {
	if t < len(a.times) {
		return a.times[t], true
	}
	return 0, false
}

// State returns the state shown at frame t.
func (a *Animation) State(t int) field.State { return a.seq[t] }

// Frame shows state t and titles the figure "time: <label>".
func (a *Animation) Frame(t int) *figure.Figure {
	s := a.seq[t]
	for i, d := range a.data {
		d.g = s.Field(i)
	}
	a.Figure.Title = ""
	if label, ok := a.Time(t); ok {
		a.Figure.Title = fmt.Sprintf("time: %g", label)
	}
	a.frame = t
	return a.Figure
}

// Frames yields every frame in order. Each iteration starts again from the
// first frame.
func (a *Animation) Frames() iter.Seq2[int, *figure.Figure] {
	return func(yield func(int, *figure.Figure) bool) {
		for t := range a.seq {
			if !yield(t, a.Frame(t)) {
				return
			}
		}
	}
}

// Render rasterizes frame t.
func (a *Animation) Render(t int) (image.Image, error) {
	if t < 0 || t >= a.Len() {
		return nil, fmt.Errorf("viz: frame %d out of range [0, %d)", t, a.Len())
	}
	return a.Frame(t).Image(), nil
}
