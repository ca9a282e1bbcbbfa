// Package field holds the numeric data model shared by the simulation and
// the visualization layer.
//
//   - [Grid]: a row-major 2D array of float64 samples
//   - [State]: a named, ordered set of equally shaped grids (one snapshot)
//   - [Sequence]: snapshots sharing one field layout
//
// Values in this package are treated as read-only by consumers.
package field
