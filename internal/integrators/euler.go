package integrators

import "github.com/san-kum/fkviz/internal/dynamo"

// Euler is the forward Euler stepper. It is the usual choice for
// reaction-diffusion grids, where dt is bounded by diffusive stability anyway.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
