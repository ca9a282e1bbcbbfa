// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// integration of (possibly spatially discretized) ODE systems:
//
//   - [State]: flat vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Simulator]: orchestrates simulation runs and state sampling
//
// # Example
//
//	dyn := physics.NewFentonKarma(128, 128, params)
//	sim := dynamo.New(dyn, integrators.NewEuler())
//	result, _ := sim.Run(ctx, dyn.RestingState(), cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. [ParallelFor] is the only
// concurrent helper; systems use it to split grid rows across goroutines.
package dynamo
