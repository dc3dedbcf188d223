// Package signal implements the waveform processing and correlation
// primitives shared by the pair, family, and scan pipelines: demean,
// cosine taper, Butterworth bandpass, and direct lag-loop normalized
// cross-correlation.
package signal

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Demean returns a copy of data with its mean subtracted.
func Demean(data []float64) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}
	mean := stat.Mean(data, nil)
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// Taper returns a copy of data with a cosine taper applied over
// totalFraction of its length, split evenly between the two ends
// (e.g. totalFraction 0.05 tapers 2.5% at each end).
func Taper(data []float64, totalFraction float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	n := len(out)
	if n == 0 || totalFraction <= 0 {
		return out
	}
	taperLen := int(totalFraction / 2 * float64(n))
	if taperLen < 1 {
		return out
	}
	if taperLen > n/2 {
		taperLen = n / 2
	}
	for i := 0; i < taperLen; i++ {
		w := 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(taperLen)))
		out[i] *= w
		out[n-1-i] *= w
	}
	return out
}
