package waveform

import (
	"context"
	"time"
)

// CoordsProvider resolves a trace id's station coordinates at a point
// in time.
type CoordsProvider interface {
	Coords(ctx context.Context, id TraceID, at time.Time) (Coords, error)
}

// WaveformProvider fetches an evenly sampled trace over [t0, t1].
type WaveformProvider interface {
	Waveform(ctx context.Context, id TraceID, t0, t1 time.Time) (Trace, error)
}

// Provider is the full capability a scan needs from a data source: both
// coordinate resolution and waveform retrieval for a trace id.
type Provider interface {
	CoordsProvider
	WaveformProvider
}

// Composed joins an independent coordinate source with an independent
// waveform source into a single Provider. Used when a directory or
// archive provider carries no station metadata of its own and instead
// relies on a CSVCoordsReader.
type Composed struct {
	CoordsProvider
	WaveformProvider
}
