package waveform

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/requake-go/requake/internal/fsutil"
	"github.com/requake-go/requake/internal/sacio"
)

// DirProvider resolves waveforms from a directory of per-event pre-cut
// SAC traces, selected by substring match on an event id embedded in the
// filename. It carries no station coordinates; pair it
// with a CoordsProvider (e.g. CSVCoordsReader) via Composed.
type DirProvider struct {
	FS  fsutil.FileSystem
	Dir string
}

// NewDirProvider returns a DirProvider rooted at dir, using the real
// filesystem.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{FS: fsutil.OSFileSystem{}, Dir: dir}
}

// Waveform is not meaningful for DirProvider: the directory holds one
// pre-cut window per event keyed by evid, not by arbitrary time range.
// Use WaveformForEvent instead; this method exists only to satisfy
// WaveformProvider for composition and always fails.
func (d *DirProvider) Waveform(ctx context.Context, id TraceID, t0, t1 time.Time) (Trace, error) {
	return Trace{}, fmt.Errorf("waveform: DirProvider requires an evid; use WaveformForEvent")
}

// Coords is not available from a directory of event traces.
func (d *DirProvider) Coords(ctx context.Context, id TraceID, at time.Time) (Coords, error) {
	return Coords{}, ErrNotFound
}

// WaveformForEvent finds the first file in Dir whose name contains evid
// as a substring and reads it as a SAC trace.
func (d *DirProvider) WaveformForEvent(evid string) (Trace, error) {
	entries, err := d.FS.ReadDir(d.Dir)
	if err != nil {
		return Trace{}, fmt.Errorf("waveform: listing %s: %w", d.Dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.Contains(entry.Name(), evid) {
			continue
		}
		full := filepath.Join(d.Dir, entry.Name())
		sacFile, err := sacio.Read(full)
		if err != nil {
			return Trace{}, fmt.Errorf("waveform: reading %s: %w", full, err)
		}
		traceID, _ := ParseTraceID(filenameTraceID(entry.Name()))
		return Trace{
			ID:        traceID,
			Dt:        sacFile.Header.Delta,
			StartTime: sacFile.Header.ReferenceTime.Add(time.Duration(sacFile.Header.B * float64(time.Second))),
			Data:      sacFile.Data,
		}, nil
	}
	return Trace{}, ErrNotFound
}

// filenameTraceID extracts a dotted trace id from a filename of the form
// "<evid>.<net>.<sta>.<loc>.<chan>.sac", the convention this provider
// expects per-event files to follow.
func filenameTraceID(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
