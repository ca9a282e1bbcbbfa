// Package analysis extracts action potential measurements from sampled
// single-cell traces.
//
// A trace is a potential series with its sample times, usually one cell of
// a stored run converted to millivolts:
//
//	s, err := analysis.Summarize(mv, times, -75)
//	fmt.Println(len(s.Activations), s.MeanDuration(), s.DominantHz)
//
// Crossing times are interpolated linearly between samples, so results are
// finer than the storage interval. [DominantFrequency] reads the spectrum of
// the mean-free trace and is the quickest way to estimate the rotation
// period of a spiral wave.
package analysis
