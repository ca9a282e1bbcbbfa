package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrShortTrace     = errors.New("analysis: trace needs at least two samples")
	ErrLengthMismatch = errors.New("analysis: values and times differ in length")
)

// Summary describes the action potentials found in one trace.
type Summary struct {
	Min, Max     float64
	Activations  []float64 // upstroke times
	Durations    []float64 // upstroke to repolarisation, completed beats only
	CycleLengths []float64 // between consecutive upstrokes
	DominantHz   float64   // assumes times in ms
}

func (s Summary) MeanDuration() float64 { return mean(s.Durations) }
func (s Summary) MeanCycle() float64    { return mean(s.CycleLengths) }

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Summarize measures v against level, the potential that marks both
// activation and repolarisation.
func Summarize(v, t []float64, level float64) (Summary, error) {
	if len(v) != len(t) {
		return Summary{}, fmt.Errorf("%w: %d values, %d times", ErrLengthMismatch, len(v), len(t))
	}
	if len(v) < 2 {
		return Summary{}, ErrShortTrace
	}
	up := Upstrokes(v, t, level)
	s := Summary{
		Min:          floats.Min(v),
		Max:          floats.Max(v),
		Activations:  up,
		Durations:    Durations(v, t, level),
		CycleLengths: CycleLengths(up),
	}
	dt := (t[len(t)-1] - t[0]) / float64(len(t)-1)
	s.DominantHz = DominantFrequency(v, dt) * 1000
	return s, nil
}

// Upstrokes returns the times at which v rises through level.
func Upstrokes(v, t []float64, level float64) []float64 {
	return crossings(v, t, level, true)
}

// Downstrokes returns the times at which v falls through level.
func Downstrokes(v, t []float64, level float64) []float64 {
	return crossings(v, t, level, false)
}

func crossings(v, t []float64, level float64, rising bool) []float64 {
	var out []float64
	for i := 1; i < len(v) && i < len(t); i++ {
		a, b := v[i-1], v[i]
		if rising && !(a < level && b >= level) {
			continue
		}
		if !rising && !(a >= level && b < level) {
			continue
		}
		frac := (level - a) / (b - a)
		out = append(out, t[i-1]+frac*(t[i]-t[i-1]))
	}
	return out
}

// Durations pairs every upstroke with the next downstroke. A beat still
// depolarised at the end of the trace has no duration.
func Durations(v, t []float64, level float64) []float64 {
	up := Upstrokes(v, t, level)
	down := Downstrokes(v, t, level)
	var out []float64
	j := 0
	for _, u := range up {
		for j < len(down) && down[j] <= u {
			j++
		}
		if j == len(down) {
			break
		}
		out = append(out, down[j]-u)
	}
	return out
}

func CycleLengths(activations []float64) []float64 {
	if len(activations) < 2 {
		return nil
	}
	out := make([]float64, len(activations)-1)
	floats.SubTo(out, activations[1:], activations[:len(activations)-1])
	return out
}
