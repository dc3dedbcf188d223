package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/rqerr"
	"github.com/requake-go/requake/internal/waveform"
)

type fakeProvider struct {
	coords      waveform.Coords
	coordsErr   error
	trace       waveform.Trace
	waveformErr error
	lastT0      time.Time
	lastT1      time.Time
}

func (f *fakeProvider) Coords(ctx context.Context, id waveform.TraceID, at time.Time) (waveform.Coords, error) {
	return f.coords, f.coordsErr
}

func (f *fakeProvider) Waveform(ctx context.Context, id waveform.TraceID, t0, t1 time.Time) (waveform.Trace, error) {
	f.lastT0, f.lastT1 = t0, t1
	if f.waveformErr != nil {
		return waveform.Trace{}, f.waveformErr
	}
	tr := f.trace
	tr.ID = id
	tr.StartTime = t0
	return tr, nil
}

func testEvent() catalog.Event {
	lat, lon, depth, mag := 10.0, 20.0, 5.0, 4.5
	return catalog.Event{
		EVID:     "reqk2023aaaaaa",
		OrigTime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Lat:      &lat,
		Lon:      &lon,
		Depth:    &depth,
		Mag:      &mag,
		MagType:  "Mw",
	}
}

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		coords: waveform.Coords{Latitude: 10.5, Longitude: 20.5},
		trace:  waveform.Trace{Dt: 0.01, Data: []float64{1, 2, 3, 4, 5}},
	}
	win := Window{PreP: 10 * time.Second, Length: 60 * time.Second}

	res, err := Fetch(context.Background(), p, testEvent(), "NET.STA.00.HHZ", win)
	require.NoError(t, err)

	assert.Equal(t, "reqk2023aaaaaa", res.Stats.EVID)
	assert.InDelta(t, 0, sum(res.Trace.Data), 1e-9)
	assert.True(t, p.lastT1.After(p.lastT0))
	assert.True(t, res.Stats.PArrival.Before(res.Stats.SArrival))
}

func TestFetchCoordsFailure(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{coordsErr: waveform.ErrNotFound}
	win := Window{PreP: 10 * time.Second, Length: 60 * time.Second}

	_, err := Fetch(context.Background(), p, testEvent(), "NET.STA.00.HHZ", win)
	require.Error(t, err)
	var rqe *rqerr.Error
	require.ErrorAs(t, err, &rqe)
	assert.Equal(t, rqerr.KindNoWaveform, rqe.Kind)
}

func TestFetchWaveformFailure(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		coords:      waveform.Coords{Latitude: 10.5, Longitude: 20.5},
		waveformErr: waveform.ErrNotFound,
	}
	win := Window{PreP: 10 * time.Second, Length: 60 * time.Second}

	_, err := Fetch(context.Background(), p, testEvent(), "NET.STA.00.HHZ", win)
	require.Error(t, err)
	var rqe *rqerr.Error
	require.ErrorAs(t, err, &rqe)
	assert.Equal(t, rqerr.KindNoWaveform, rqe.Kind)
}

func TestFetchInvalidTraceID(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	win := Window{PreP: 10 * time.Second, Length: 60 * time.Second}
	_, err := Fetch(context.Background(), p, testEvent(), "not-a-trace-id", win)
	assert.Error(t, err)
}

func sum(data []float64) float64 {
	var s float64
	for _, v := range data {
		s += v
	}
	return s
}
