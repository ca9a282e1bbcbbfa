package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/fkviz/internal/dynamo"
	"github.com/san-kum/fkviz/internal/field"
)

// FieldNames is the layout of a FentonKarma state: the dimensionless
// membrane potential u, then the fast (v) and slow (w) gates.
var FieldNames = []string{"u", "v", "w"}

// FentonKarma is the three-variable Fenton-Karma model of cardiac
// excitation on a rows x cols monodomain grid with no-flux boundaries.
type FentonKarma struct {
	Rows, Cols  int
	Params      Params
	Diffusivity float64 // cm^2/ms
	Dx          float64 // cm per cell
	Stimuli     []Stimulus

	stim []float64
}

func NewFentonKarma(rows, cols int, p Params) *FentonKarma {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return &FentonKarma{
		Rows:        rows,
		Cols:        cols,
		Params:      p,
		Diffusivity: 0.001,
		Dx:          0.01,
	}
}

func (fk *FentonKarma) cells() int    { return fk.Rows * fk.Cols }
func (fk *FentonKarma) StateDim() int { return 3 * fk.cells() }

// AddStimulus registers s. Its pattern must match the grid.
func (fk *FentonKarma) AddStimulus(s Stimulus) error {
	if s.Pattern == nil || s.Pattern.Rows != fk.Rows || s.Pattern.Cols != fk.Cols {
		return fmt.Errorf("%w: stimulus pattern does not match %dx%d grid", field.ErrShapeMismatch, fk.Rows, fk.Cols)
	}
	fk.Stimuli = append(fk.Stimuli, s)
	return nil
}

// RestingState is the fully recovered tissue: u=0, v=w=1.
func (fk *FentonKarma) RestingState() dynamo.State {
	n := fk.cells()
	s := make(dynamo.State, 3*n)
	for i := n; i < 3*n; i++ {
		s[i] = 1
	}
	return s
}

// MaxStableDt is the forward Euler stability bound of the diffusion term.
func (fk *FentonKarma) MaxStableDt() float64 {
	if fk.Diffusivity <= 0 {
		return math.Inf(1)
	}
	return fk.Dx * fk.Dx / (4 * fk.Diffusivity)
}

func heaviside(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return 0
}

func (fk *FentonKarma) Derive(x dynamo.State, t float64) dynamo.State {
	n := fk.cells()
	dx := make(dynamo.State, 3*n)
	if len(x) < 3*n {
		return dx
	}
	u, v, w := x[:n], x[n:2*n], x[2*n:3*n]
	stim := fk.stimulusAt(t)
	p := fk.Params
	coupling := fk.Diffusivity / (fk.Dx * fk.Dx)

	dynamo.ParallelFor(fk.Rows, 16, func(start, end int) {
		for r := start; r < end; r++ {
			for c := 0; c < fk.Cols; c++ {
				i := r*fk.Cols + c
				ui, vi, wi := u[i], v[i], w[i]
				hc := heaviside(ui - p.Uc)
				hv := heaviside(ui - p.Uv)

				jfi := -vi * hc * (1 - ui) * (ui - p.Uc) / p.TauD
				jso := ui*(1-hc)/p.Tau0 + hc/p.TauR
				jsi := -wi * (1 + math.Tanh(p.K*(ui-p.UcSi))) / (2 * p.TauSi)

				du := coupling*fk.laplacian(u, r, c) - (jfi + jso + jsi)
				if stim != nil {
					du += stim[i]
				}

				tauVMinus := hv*p.TauV1Minus + (1-hv)*p.TauV2Minus
				dx[i] = du
				dx[n+i] = (1-hc)*(1-vi)/tauVMinus - hc*vi/p.TauVPlus
				dx[2*n+i] = (1-hc)*(1-wi)/p.TauWMinus - hc*wi/p.TauWPlus
			}
		}
	})
	return dx
}

// laplacian is the five-point stencil in cell units; out-of-grid neighbours
// mirror the centre cell, which gives zero flux across the boundary.
func (fk *FentonKarma) laplacian(u []float64, r, c int) float64 {
	i := r*fk.Cols + c
	centre := u[i]
	sum := -4 * centre
	if r > 0 {
		sum += u[i-fk.Cols]
	} else {
		sum += centre
	}
	if r < fk.Rows-1 {
		sum += u[i+fk.Cols]
	} else {
		sum += centre
	}
	if c > 0 {
		sum += u[i-1]
	} else {
		sum += centre
	}
	if c < fk.Cols-1 {
		sum += u[i+1]
	} else {
		sum += centre
	}
	return sum
}

// stimulusAt sums the patterns of every stimulus active at t, or returns
// nil when none is.
func (fk *FentonKarma) stimulusAt(t float64) []float64 {
	var out []float64
	for _, s := range fk.Stimuli {
		if !s.Protocol.Active(t) {
			continue
		}
		if out == nil {
			if len(fk.stim) != fk.cells() {
				fk.stim = make([]float64, fk.cells())
			}
			out = fk.stim
			clear(out)
		}
		for i, val := range s.Pattern.Data {
			out[i] += val
		}
	}
	return out
}

// Unpack copies a flat state into a named field.State.
func (fk *FentonKarma) Unpack(x dynamo.State) (field.State, error) {
	n := fk.cells()
	if len(x) != 3*n {
		return field.State{}, fmt.Errorf("%w: state has %d entries, want %d", dynamo.ErrDimensionMismatch, len(x), 3*n)
	}
	grids := make([]*field.Grid, len(FieldNames))
	for k := range grids {
		g := field.NewGrid(fk.Rows, fk.Cols)
		copy(g.Data, x[k*n:(k+1)*n])
		grids[k] = g
	}
	return field.NewState(FieldNames, grids...)
}

// UnpackAll converts sampled states into a field.Sequence.
func (fk *FentonKarma) UnpackAll(xs []dynamo.State) (field.Sequence, error) {
	seq := make(field.Sequence, 0, len(xs))
	for i, x := range xs {
		s, err := fk.Unpack(x)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		seq = append(seq, s)
	}
	return seq, nil
}

func (fk *FentonKarma) GetParams() map[string]float64 {
	out := map[string]float64{"diffusivity": fk.Diffusivity}
	for name, ptr := range fk.Params.fields() {
		out[name] = *ptr
	}
	return out
}

func (fk *FentonKarma) SetParam(name string, value float64) error {
	if name == "diffusivity" {
		if value < 0 {
			return fmt.Errorf("%w: diffusivity %f", dynamo.ErrParameterBounds, value)
		}
		fk.Diffusivity = value
		return nil
	}
	ptr, ok := fk.Params.fields()[name]
	if !ok {
		return fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownParam, name, ParamNames())
	}
	*ptr = value
	return nil
}

func ParamNames() []string {
	var p Params
	names := []string{"diffusivity"}
	for name := range p.fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
