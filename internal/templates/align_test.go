package templates

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requake-go/requake/internal/fetch"
	"github.com/requake-go/requake/internal/waveform"
)

func sineResult(shift int, n int, dt float64, start time.Time) fetch.Result {
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 1.0 * float64(i-shift) * dt)
	}
	id, _ := waveform.ParseTraceID("NET.STA.00.HHZ")
	return fetch.Result{
		Trace: waveform.Trace{ID: id, Dt: dt, StartTime: start, Data: data},
		Stats: fetch.Stats{PArrival: start.Add(time.Second), SArrival: start.Add(2 * time.Second)},
	}
}

func TestAlignPair(t *testing.T) {
	t.Parallel()

	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	m1 := member{Result: sineResult(0, 100, 0.05, start), PArrival: start.Add(time.Second), SArrival: start.Add(2 * time.Second)}
	m2 := member{Result: sineResult(5, 100, 0.05, start), PArrival: start.Add(time.Second), SArrival: start.Add(2 * time.Second)}

	ccMax, err := alignPair(&m1, &m2, 20, 0, 0, 4, false)
	require.NoError(t, err)
	assert.Greater(t, ccMax, 0.9)
}

func TestAlignTraces(t *testing.T) {
	t.Parallel()

	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	members := []member{
		{Result: sineResult(0, 100, 0.05, start), PArrival: start.Add(time.Second), SArrival: start.Add(2 * time.Second)},
		{Result: sineResult(3, 100, 0.05, start), PArrival: start.Add(time.Second), SArrival: start.Add(2 * time.Second)},
		{Result: sineResult(-2, 100, 0.05, start), PArrival: start.Add(time.Second), SArrival: start.Add(2 * time.Second)},
	}

	require.NoError(t, alignTraces(members, 20, 0, 0, 4, false, true))
	for _, m := range members {
		assert.Greater(t, m.CCMean, 0.8)
	}
}

func TestStackTraces(t *testing.T) {
	t.Parallel()

	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	members := []member{
		{Result: sineResult(0, 100, 0.05, start), PArrival: start.Add(time.Second), SArrival: start.Add(2 * time.Second)},
		{Result: sineResult(0, 100, 0.05, start), PArrival: start.Add(time.Second), SArrival: start.Add(2 * time.Second)},
	}
	stack := stackTraces(members, true)
	assert.Equal(t, epoch, stack.Result.Trace.StartTime)
	assert.Len(t, stack.Result.Trace.Data, 100)
}
