package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requake-go/requake/internal/archive"
	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/config"
	"github.com/requake-go/requake/internal/families"
	"github.com/requake-go/requake/internal/sacio"
	"github.com/requake-go/requake/internal/slip"
	"github.com/requake-go/requake/internal/waveform"
)

func sineData(n int, dt, freq float64) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) * dt)
	}
	return data
}

func sineTrace(id waveform.TraceID, start time.Time, n int, dt, freq float64) waveform.Trace {
	return waveform.Trace{ID: id, Dt: dt, StartTime: start, Data: sineData(n, dt, freq)}
}

func writeTestTemplate(t *testing.T, dir string, familyNumber int, traceID string, n int, dt float64) {
	t.Helper()
	f := sacio.File{
		Header: sacio.Header{
			Delta: dt, StationLat: 1, StationLon: 2,
			EventLat: 1, EventLon: 2, EventDepth: 10,
			A: 1.0, ReferenceTime: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Data: sineData(n, dt, 1.0),
	}
	filename := filepath.Join(dir, fmt.Sprintf("template%02d.%s.sac", familyNumber, traceID))
	require.NoError(t, sacio.Write(filename, f))
}

func TestRunScansAndDetects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.sqlite")
	templateDir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	id := waveform.TraceID{Network: "NET", Station: "STA", Location: "00", Channel: "HHZ"}
	dt := 0.05
	scanStart := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	arc, err := archive.Open(archivePath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, arc.InsertCoords(ctx, id, time.Time{}, waveform.Coords{Latitude: 1, Longitude: 2}))
	// One continuous segment spanning the whole scan window with margin
	// for the fetch window either side of the chunk boundary.
	require.NoError(t, arc.InsertSegment(ctx, "test", sineTrace(id, scanStart.Add(-10*time.Second), 1000, dt, 1.0)))
	require.NoError(t, arc.Close())

	writeTestTemplate(t, templateDir, 0, "NET.STA.00.HHZ", 100, dt)

	lat, lon, depth, mag := 1.0, 2.0, 10.0, 3.0
	fam := families.New(0, slip.NadeauJohnson1998, slip.Params{})
	require.NoError(t, fam.Append(catalog.Event{
		EVID: "a", OrigTime: scanStart, Lat: &lat, Lon: &lon, Depth: &depth, Mag: &mag,
		MagType: "Mw", TraceID: "NET.STA.00.HHZ",
	}))

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.TemplateStartTime = scanStart
	cfg.TemplateEndTime = scanStart
	cfg.TimeChunk = 5 * time.Second
	cfg.TimeChunkOverlap = 0
	cfg.CCPreP = 1 * time.Second
	cfg.CCTraceLength = 5 * time.Second
	cfg.CCFreqMin = 0
	cfg.CCFreqMax = 0
	cfg.CCFilterOrder = 4
	cfg.MinCCMadRatio = 0
	cfg.TemplateDir = templateDir
	cfg.OutDir = outDir

	detections, numTemplates, err := run(ctx, *cfg, []*families.Family{fam}, archivePath, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, numTemplates)
	assert.Equal(t, 1, detections, "the template should detect its own waveform exactly once")
}

func TestRunErrorsWithNoTemplates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.sqlite")
	arc, err := archive.Open(archivePath)
	require.NoError(t, err)
	require.NoError(t, arc.Close())

	_, _, err = run(context.Background(), config.Config{TemplateDir: t.TempDir()}, nil, archivePath, "", "")
	assert.Error(t, err)
}
