package viz

import (
	"fmt"

	"github.com/san-kum/fkviz/internal/field"
	"github.com/san-kum/fkviz/internal/figure"
	"gonum.org/v1/plot/vg"
)

func stateDefaults() options {
	return options{
		vmin:   0,
		vmax:   1,
		cmap:   "RdBu",
		width:  25 * vg.Inch,
		height: 5 * vg.Inch,
	}
}

// PlotState draws every field of state side by side as a heatmap, titled
// with the field name, with axes in cm. Nothing is displayed.
func PlotState(state field.State, opts ...Option) (*figure.Figure, error) {
	if state.Len() == 0 {
		return nil, fmt.Errorf("%w: state has no fields", ErrNoData)
	}
	o := apply(stateDefaults(), opts)
	cm, err := figure.ColorMap(o.cmap, o.vmin, o.vmax)
	if err != nil {
		return nil, err
	}

	f := figure.New(1, state.Len(), o.width, o.height)
	for i := 0; i < state.Len(); i++ {
		f.Set(i, heatPanel(&gridXYZ{g: state.Field(i)}, heatSpec{
			title:   state.Name(i),
			cmap:    cm,
			cmTicks: true,
		}))
	}
	return f, nil
}
