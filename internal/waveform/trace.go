package waveform

import (
	"fmt"
	"time"
)

// ErrNotFound is returned by a Provider when no coordinates or waveform
// data exist for the requested trace id / time range.
var ErrNotFound = fmt.Errorf("waveform: not found")

// Coords is a station's location at a point in time.
type Coords struct {
	Latitude  float64
	Longitude float64
	Elevation float64
	Depth     float64
}

// Trace is an evenly sampled waveform segment.
type Trace struct {
	ID        TraceID
	Dt        float64 // sampling interval, seconds
	StartTime time.Time
	Data      []float64
}

// EndTime returns the time of the trace's last sample.
func (t Trace) EndTime() time.Time {
	if len(t.Data) == 0 {
		return t.StartTime
	}
	return t.StartTime.Add(time.Duration(float64(len(t.Data)-1) * t.Dt * float64(time.Second)))
}

// Clone returns a deep copy of the trace's sample data.
func (t Trace) Clone() Trace {
	data := make([]float64, len(t.Data))
	copy(data, t.Data)
	return Trace{ID: t.ID, Dt: t.Dt, StartTime: t.StartTime, Data: data}
}

// maxSingleGapFraction bounds how large a gap (as a fraction of dt) still
// counts as "single sample" and is linearly interpolated rather than
// causing the merge to fail.
const maxSingleGapFraction = 1.5

// MergeSegments concatenates time-ordered, non-overlapping segments of a
// single trace into one evenly sampled trace, linearly interpolating
// across any single-sample gap. A gap spanning more than one sample
// causes an error rather than a silent interpolation across missing data.
func MergeSegments(segments []Trace) (Trace, error) {
	if len(segments) == 0 {
		return Trace{}, fmt.Errorf("waveform: no segments to merge")
	}
	dt := segments[0].Dt
	id := segments[0].ID
	out := Trace{ID: id, Dt: dt, StartTime: segments[0].StartTime}
	out.Data = append(out.Data, segments[0].Data...)

	for i := 1; i < len(segments); i++ {
		seg := segments[i]
		if seg.Dt != dt {
			return Trace{}, fmt.Errorf("waveform: sampling interval mismatch merging segments: %v != %v", seg.Dt, dt)
		}
		prevEnd := out.EndTime()
		// Samples missing between the previous segment's last sample and
		// this segment's first: 0 for a contiguous join.
		gapSamples := seg.StartTime.Sub(prevEnd).Seconds()/dt - 1
		switch {
		case gapSamples < 0.5:
			// contiguous or overlapping; append as-is.
		case gapSamples <= maxSingleGapFraction:
			last := out.Data[len(out.Data)-1]
			first := seg.Data[0]
			out.Data = append(out.Data, (last+first)/2)
		default:
			return Trace{}, fmt.Errorf("waveform: gap of %.1f samples exceeds single-sample tolerance", gapSamples)
		}
		out.Data = append(out.Data, seg.Data...)
	}
	return out, nil
}
