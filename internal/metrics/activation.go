package metrics

import (
	"github.com/san-kum/fkviz/internal/dynamo"
	"github.com/san-kum/fkviz/internal/physics"
	"gonum.org/v1/gonum/floats"
)

// potential returns the u block of a packed grid state.
func potential(x dynamo.State, cells int) dynamo.State {
	if cells > len(x) {
		cells = len(x)
	}
	return x[:cells]
}

// Activation tracks the peak fraction of cells whose potential exceeds a
// threshold at the same time.
type Activation struct {
	cells     int
	threshold float64
	peak      float64
}

func NewActivation(cells int, threshold float64) *Activation {
	return &Activation{cells: cells, threshold: threshold}
}

func (a *Activation) Name() string { return "peak_activation" }

func (a *Activation) Observe(x dynamo.State, t float64) {
	u := potential(x, a.cells)
	if len(u) == 0 {
		return
	}
	active := 0
	for _, v := range u {
		if v > a.threshold {
			active++
		}
	}
	if f := float64(active) / float64(len(u)); f > a.peak {
		a.peak = f
	}
}

func (a *Activation) Value() float64 { return a.peak }
func (a *Activation) Reset()         { a.peak = 0 }

// MeanPotential is the time average of the spatial mean potential, in mV.
type MeanPotential struct {
	cells   int
	sum     float64
	samples int
}

func NewMeanPotential(cells int) *MeanPotential {
	return &MeanPotential{cells: cells}
}

func (m *MeanPotential) Name() string { return "mean_potential_mv" }

func (m *MeanPotential) Observe(x dynamo.State, t float64) {
	u := potential(x, m.cells)
	if len(u) == 0 {
		return
	}
	m.sum += physics.ToMillivolts(floats.Sum(u) / float64(len(u)))
	m.samples++
}

func (m *MeanPotential) Value() float64 {
	if m.samples == 0 {
		return physics.RestingPotential
	}
	return m.sum / float64(m.samples)
}

func (m *MeanPotential) Reset() {
	m.sum = 0
	m.samples = 0
}

// Default returns the metrics recorded for every run on a grid of the given
// number of cells.
func Default(cells int) []dynamo.Metric {
	return []dynamo.Metric{
		NewActivation(cells, 0.5),
		NewMeanPotential(cells),
		NewStability(cells, 0.5),
	}
}
