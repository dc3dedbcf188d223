package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrossCorrelateIdenticalTraces(t *testing.T) {
	t.Parallel()

	a := []float64{0, 1, 2, 1, 0, -1, -2, -1, 0}
	c := CrossCorrelate(a, a, 0.1, 4, false)
	assert.Equal(t, 0, c.Lag)
	assert.InDelta(t, 0, c.LagSec, 1e-9)
	assert.InDelta(t, 1, c.CCMax, 1e-6)
}

func TestCrossCorrelateShiftedTraces(t *testing.T) {
	t.Parallel()

	a := []float64{0, 1, 2, 1, 0, -1, -2, -1, 0, 0, 0, 0}
	shift := 3
	b := make([]float64, len(a))
	for i := range b {
		if i+shift < len(a) {
			b[i] = a[i+shift]
		}
	}

	c := CrossCorrelate(a, b, 0.05, 6, false)
	assert.Equal(t, shift, c.Lag)
	assert.InDelta(t, float64(shift)*0.05, c.LagSec, 1e-9)
}

func TestCrossCorrelateSymmetric(t *testing.T) {
	t.Parallel()

	a := []float64{0, 1, 2, 1, 0, -1, -2, -1, 0, 0, 0, 0}
	shift := 3
	b := make([]float64, len(a))
	for i := range b {
		if i+shift < len(a) {
			b[i] = a[i+shift]
		}
	}

	ab := CrossCorrelate(a, b, 0.05, 6, false)
	ba := CrossCorrelate(b, a, 0.05, 6, false)

	assert.InDelta(t, ab.CCMax, ba.CCMax, 1e-9)
	assert.InDelta(t, ab.LagSec, -ba.LagSec, 0.05+1e-9)
}

func TestCrossCorrelateAllowNegative(t *testing.T) {
	t.Parallel()

	a := []float64{1, 2, 3, 2, 1, 0, 0, 0}
	b := make([]float64, len(a))
	for i, v := range a {
		b[i] = -v
	}
	c := CrossCorrelate(a, b, 0.1, 2, true)
	assert.InDelta(t, -1, c.CCMax, 1e-6)
}

func TestMAD(t *testing.T) {
	t.Parallel()

	t.Run("ignores near-zero noise floor", func(t *testing.T) {
		t.Parallel()
		values := []float64{1e-7, -1e-7, 1, 2, 3, 4, 5}
		m := MAD(values)
		assert.Greater(t, m, 0.0)
	})

	t.Run("all below threshold", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, MAD([]float64{1e-7, -1e-8}))
	})
}
