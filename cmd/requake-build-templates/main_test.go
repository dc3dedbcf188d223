package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requake-go/requake/internal/archive"
	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/config"
	"github.com/requake-go/requake/internal/families"
	"github.com/requake-go/requake/internal/slip"
	"github.com/requake-go/requake/internal/waveform"
)

func sineSegment(id waveform.TraceID, start time.Time, n int, dt, freq float64) waveform.Trace {
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) * dt)
	}
	return waveform.Trace{ID: id, Dt: dt, StartTime: start, Data: data}
}

func TestRunBuildsSelectedFamily(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.sqlite")
	templateDir := filepath.Join(dir, "templates")

	arc, err := archive.Open(archivePath)
	require.NoError(t, err)
	id := waveform.TraceID{Network: "NET", Station: "STA", Location: "00", Channel: "HHZ"}
	ctx := context.Background()
	require.NoError(t, arc.InsertCoords(ctx, id, time.Time{}, waveform.Coords{Latitude: 0, Longitude: 0}))

	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	dt := 0.1
	for _, offset := range []time.Duration{0, 24 * time.Hour, 48 * time.Hour} {
		start := base.Add(offset).Add(-5 * time.Second)
		require.NoError(t, arc.InsertSegment(ctx, "test", sineSegment(id, start, 200, dt, 3.0)))
	}
	require.NoError(t, arc.Close())

	lat, lon, depth, mag := 0.0, 0.0, 5.0, 3.0
	mkEvent := func(evid string, t time.Time) catalog.Event {
		return catalog.Event{
			EVID: evid, OrigTime: t, Lat: &lat, Lon: &lon, Depth: &depth, Mag: &mag,
			MagType: "Mw", TraceID: "NET.STA.00.HHZ",
		}
	}
	fam := families.New(0, slip.NadeauJohnson1998, slip.Params{})
	require.NoError(t, fam.Append(mkEvent("a", base)))
	require.NoError(t, fam.Append(mkEvent("b", base.Add(24*time.Hour))))
	require.NoError(t, fam.Append(mkEvent("c", base.Add(48*time.Hour))))

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.CCPreP = 2 * time.Second
	cfg.CCTraceLength = 8 * time.Second
	cfg.CCFreqMin = 1
	cfg.CCFreqMax = 5
	cfg.TemplateDir = templateDir

	built, selected, err := run(ctx, *cfg, []*families.Family{fam}, "all", archivePath, "")
	require.NoError(t, err)
	assert.Equal(t, 1, selected)
	assert.Equal(t, 1, built)

	entries, err := os.ReadDir(templateDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMapAllToEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", mapAllToEmpty("all"))
	assert.Equal(t, "3,5", mapAllToEmpty("3,5"))
}
