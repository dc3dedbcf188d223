package signal

import (
	"fmt"
	"math"
)

// sos holds one digital second-order section (biquad) in direct-form-I,
// normalized so the leading denominator coefficient is 1.
type sos struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// Bandpass applies a fixed-order Butterworth bandpass between freqMin
// and freqMax (Hz) to data sampled at interval dt (seconds). No single
// gonum package designs IIR filters, so the section
// coefficients are derived directly from the standard analog Butterworth
// pole layout and a bilinear transform, and the bandpass itself is
// realized as a highpass stage at freqMin cascaded with a lowpass stage
// at freqMax, each of the given order. Each stage is run forward and
// backward (zero-phase), matching obspy's causal-equivalent filtering.
func Bandpass(data []float64, dt, freqMin, freqMax float64, order int) ([]float64, error) {
	if order < 2 || order%2 != 0 {
		return nil, fmt.Errorf("signal: butterworth order must be a positive even number, got %d", order)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("signal: non-positive sampling interval %v", dt)
	}
	nyquist := 1 / (2 * dt)
	if freqMin <= 0 || freqMax <= freqMin || freqMax >= nyquist {
		return nil, fmt.Errorf("signal: invalid band [%v, %v] for nyquist %v", freqMin, freqMax, nyquist)
	}

	hp := highpassSections(order, freqMin, dt)
	lp := lowpassSections(order, freqMax, dt)

	out := filtfiltAll(data, hp)
	out = filtfiltAll(out, lp)
	return out, nil
}

// lowpassSections builds the cascaded second-order sections of an
// order-n digital Butterworth lowpass filter with cutoff cutoffHz,
// sampled at interval dt.
func lowpassSections(order int, cutoffHz, dt float64) []sos {
	wc := prewarp(cutoffHz, dt)
	k := 2 / dt
	sections := make([]sos, 0, order/2)
	for _, phi := range conjugatePairAngles(order) {
		damp := 2 * wc * math.Sin(phi)
		sections = append(sections, bilinear(0, 0, wc*wc, 1, damp, wc*wc, k))
	}
	return sections
}

// highpassSections builds the cascaded second-order sections of an
// order-n digital Butterworth highpass filter with cutoff cutoffHz.
func highpassSections(order int, cutoffHz, dt float64) []sos {
	wc := prewarp(cutoffHz, dt)
	k := 2 / dt
	sections := make([]sos, 0, order/2)
	for _, phi := range conjugatePairAngles(order) {
		damp := 2 * wc * math.Sin(phi)
		sections = append(sections, bilinear(1, 0, 0, 1, damp, wc*wc, k))
	}
	return sections
}

// conjugatePairAngles returns, for an even-order Butterworth prototype,
// the angle phi_k = pi*(2k-1)/(2n) for each of the n/2 conjugate pole
// pairs (k = 1..n/2). The pole pair at angle phi has real part
// -sin(phi) and imaginary part ±cos(phi) on the unit circle.
func conjugatePairAngles(order int) []float64 {
	angles := make([]float64, order/2)
	for k := 1; k <= order/2; k++ {
		angles[k-1] = math.Pi * float64(2*k-1) / float64(2*order)
	}
	return angles
}

// prewarp converts a desired digital cutoff frequency (Hz) at sampling
// interval dt into the prewarped analog angular frequency used before
// the bilinear transform, so the digital cutoff lands exactly on target.
func prewarp(cutoffHz, dt float64) float64 {
	return (2 / dt) * math.Tan(math.Pi*cutoffHz*dt)
}

// bilinear converts one analog second-order section
// (b2 s^2 + b1 s + b0) / (a2 s^2 + a1 s + a0)
// into a digital biquad via s = k*(1-z^-1)/(1+z^-1).
func bilinear(b2, b1, b0, a2, a1, a0, k float64) sos {
	k2 := k * k
	n0 := b2*k2 + b1*k + b0
	n1 := -2*b2*k2 + 2*b0
	n2 := b2*k2 - b1*k + b0
	d0 := a2*k2 + a1*k + a0
	d1 := -2*a2*k2 + 2*a0
	d2 := a2*k2 - a1*k + a0
	return sos{
		b0: n0 / d0,
		b1: n1 / d0,
		b2: n2 / d0,
		a1: d1 / d0,
		a2: d2 / d0,
	}
}

// applySection runs one biquad over data using the direct form I
// difference equation, single pass (causal).
func applySection(data []float64, s sos) []float64 {
	out := make([]float64, len(data))
	var x1, x2, y1, y2 float64
	for i, x0 := range data {
		y0 := s.b0*x0 + s.b1*x1 + s.b2*x2 - s.a1*y1 - s.a2*y2
		out[i] = y0
		x2, x1 = x1, x0
		y2, y1 = y1, y0
	}
	return out
}

// filtfiltAll runs the full cascade of sections forward, then reverses
// and runs the cascade again, then reverses back, canceling the phase
// distortion each single pass introduces.
func filtfiltAll(data []float64, sections []sos) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	for _, s := range sections {
		out = applySection(out, s)
	}
	reverse(out)
	for _, s := range sections {
		out = applySection(out, s)
	}
	reverse(out)
	return out
}

func reverse(data []float64) {
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
}
