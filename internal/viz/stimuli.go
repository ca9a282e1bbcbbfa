package viz

import (
	"fmt"
	"io"

	"github.com/san-kum/fkviz/internal/field"
	"github.com/san-kum/fkviz/internal/figure"
	"gonum.org/v1/plot/vg"
)

// Stimulus is anything carrying an applied current pattern.
type Stimulus interface {
	Field() *field.Grid
}

func stimuliDefaults() options {
	return options{
		vmin:   -1,
		vmax:   1,
		cmap:   "RdBu",
		width:  10 * vg.Inch,
		height: 3 * vg.Inch,
	}
}

// StimuliFigure draws one heatmap per stimulus pattern, titled "Stimulus i".
func StimuliFigure[S Stimulus](stimuli []S, opts ...Option) (*figure.Figure, error) {
	if len(stimuli) == 0 {
		return nil, fmt.Errorf("%w: no stimuli", ErrNoData)
	}
	o := apply(stimuliDefaults(), opts)
	cm, err := figure.ColorMap(o.cmap, o.vmin, o.vmax)
	if err != nil {
		return nil, err
	}

	f := figure.New(1, len(stimuli), o.width, o.height)
	for i, s := range stimuli {
		f.Set(i, heatPanel(&gridXYZ{g: s.Field()}, heatSpec{
			title: fmt.Sprintf("Stimulus %d", i),
			cmap:  cm,
		}))
	}
	return f, nil
}

// PlotStimuli draws the stimulus patterns and shows them on w right away.
// Unlike the other plotting functions it keeps no figure. With no stimuli
// nothing is shown.
func PlotStimuli[S Stimulus](w io.Writer, stimuli []S, opts ...Option) error {
	if len(stimuli) == 0 {
		return nil
	}
	f, err := StimuliFigure(stimuli, opts...)
	if err != nil {
		return err
	}
	return f.Show(w)
}
