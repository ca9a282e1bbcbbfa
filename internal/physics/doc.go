// Package physics provides the cardiac tissue model that produces the
// fields rendered by package viz.
//
//   - [FentonKarma]: three-variable Fenton-Karma model on a 2D grid,
//     implementing [dynamo.System] and [dynamo.Configurable]
//   - [Stimulus]: applied current patterns with a timing [Protocol]
//   - [ToMillivolts]: maps the dimensionless potential u onto mV
//
// Grid spacing defaults to 0.01 cm, so a grid index divided by 100 is a
// distance in cm.
//
//	fk := physics.NewFentonKarma(128, 128, physics.ParamSets["set3"])
//	fk.AddStimulus(physics.Linear(128, 128, physics.Left, 0.05, 1, physics.Protocol{Duration: 2}))
//	result, _ := dynamo.New(fk, integrators.NewEuler()).Run(ctx, fk.RestingState(), cfg)
//	seq, _ := fk.UnpackAll(result.States)
package physics
