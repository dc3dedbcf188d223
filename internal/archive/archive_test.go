package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requake-go/requake/internal/waveform"
)

func openTestArchive(t *testing.T) *ArchiveProvider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.sqlite")
	a, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestOpenMigratesToLatestVersion(t *testing.T) {
	t.Parallel()
	a := openTestArchive(t)
	version, dirty, err := a.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)
}

func TestCoordsRoundTrip(t *testing.T) {
	t.Parallel()
	a := openTestArchive(t)
	ctx := context.Background()
	id := waveform.TraceID{Network: "NET", Station: "STA", Location: "00", Channel: "HHZ"}

	_, err := a.Coords(ctx, id, time.Now())
	assert.ErrorIs(t, err, waveform.ErrNotFound)

	want := waveform.Coords{Latitude: 45.1, Longitude: 7.2, Elevation: 500, Depth: 0}
	require.NoError(t, a.InsertCoords(ctx, id, time.Time{}, want))

	got, err := a.Coords(ctx, id, time.Now())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCoordsPicksMostRecentValidFrom(t *testing.T) {
	t.Parallel()
	a := openTestArchive(t)
	ctx := context.Background()
	id := waveform.TraceID{Network: "NET", Station: "STA", Location: "00", Channel: "HHZ"}

	old := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	moved := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, a.InsertCoords(ctx, id, old, waveform.Coords{Latitude: 1}))
	require.NoError(t, a.InsertCoords(ctx, id, moved, waveform.Coords{Latitude: 2}))

	before, err := a.Coords(ctx, id, old.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1.0, before.Latitude)

	after, err := a.Coords(ctx, id, moved.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2.0, after.Latitude)
}

func sineTrace(id waveform.TraceID, start time.Time, n int, dt float64) waveform.Trace {
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)
	}
	return waveform.Trace{ID: id, Dt: dt, StartTime: start, Data: data}
}

func TestWaveformSingleSegmentTrim(t *testing.T) {
	t.Parallel()
	a := openTestArchive(t)
	ctx := context.Background()
	id := waveform.TraceID{Network: "NET", Station: "STA", Location: "00", Channel: "HHZ"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := sineTrace(id, start, 100, 0.1)
	require.NoError(t, a.InsertSegment(ctx, "test", tr))

	got, err := a.Waveform(ctx, id, start.Add(time.Second), start.Add(2*time.Second))
	require.NoError(t, err)
	assert.InDelta(t, 0.1, got.Dt, 1e-9)
	assert.True(t, len(got.Data) > 0 && len(got.Data) < 100)
	assert.Equal(t, 10.0, got.Data[0])
}

func TestWaveformStitchesAdjacentSegments(t *testing.T) {
	t.Parallel()
	a := openTestArchive(t)
	ctx := context.Background()
	id := waveform.TraceID{Network: "NET", Station: "STA", Location: "00", Channel: "HHZ"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dt := 0.1
	first := sineTrace(id, start, 50, dt)
	second := sineTrace(id, start.Add(time.Duration(50*dt*float64(time.Second))), 50, dt)
	require.NoError(t, a.InsertSegment(ctx, "test", first))
	require.NoError(t, a.InsertSegment(ctx, "test", second))

	got, err := a.Waveform(ctx, id, start, second.EndTime())
	require.NoError(t, err)
	assert.Equal(t, 100, len(got.Data))
}

func TestWaveformNotFound(t *testing.T) {
	t.Parallel()
	a := openTestArchive(t)
	ctx := context.Background()
	id := waveform.TraceID{Network: "NET", Station: "STA", Location: "00", Channel: "HHZ"}
	_, err := a.Waveform(ctx, id, time.Now(), time.Now().Add(time.Minute))
	assert.ErrorIs(t, err, waveform.ErrNotFound)
}
