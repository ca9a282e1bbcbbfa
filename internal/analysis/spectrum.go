package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum returns the one-sided amplitude spectrum of v sampled every dt.
// Frequencies are in cycles per unit of dt. The mean is removed first.
func Spectrum(v []float64, dt float64) (freq, amp []float64) {
	n := len(v)
	if n < 2 || dt <= 0 {
		return nil, nil
	}
	m := stat.Mean(v, nil)
	centred := make([]float64, n)
	for i, x := range v {
		centred[i] = x - m
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centred)
	freq = make([]float64, len(coeff))
	amp = make([]float64, len(coeff))
	for i, c := range coeff {
		freq[i] = fft.Freq(i) / dt
		amp[i] = cmplx.Abs(c)
	}
	return freq, amp
}

// DominantFrequency is the strongest non-zero frequency of v, or 0 for a
// flat or too short trace.
func DominantFrequency(v []float64, dt float64) float64 {
	freq, amp := Spectrum(v, dt)
	if len(amp) < 2 {
		return 0
	}
	best := 1
	for i := 2; i < len(amp); i++ {
		if amp[i] > amp[best] {
			best = i
		}
	}
	if amp[best] == 0 {
		return 0
	}
	return freq[best]
}
