package physics

import "github.com/san-kum/fkviz/internal/field"

// Membrane potentials used to map the dimensionless u onto millivolts.
const (
	RestingPotential = -85.0
	PeakPotential    = 15.0
)

func ToMillivolts(u float64) float64 {
	return u*(PeakPotential-RestingPotential) + RestingPotential
}

func FromMillivolts(mv float64) float64 {
	return (mv - RestingPotential) / (PeakPotential - RestingPotential)
}

func GridToMillivolts(g *field.Grid) *field.Grid {
	return g.Map(ToMillivolts)
}
