package archive

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/requake-go/requake/internal/waveform"
)

var _ waveform.Provider = (*ArchiveProvider)(nil)

// Coords resolves the station coordinates in effect at or before at,
// preferring the most recent valid_from not after the requested time.
func (a *ArchiveProvider) Coords(ctx context.Context, id waveform.TraceID, at time.Time) (waveform.Coords, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT latitude, longitude, elevation, depth FROM station_coords
		WHERE network = ? AND station = ? AND location = ? AND channel = ?
		  AND (valid_from = 0 OR valid_from <= ?)
		ORDER BY valid_from DESC LIMIT 1`,
		id.Network, id.Station, id.Location, id.Channel, at.Unix())

	var c waveform.Coords
	if err := row.Scan(&c.Latitude, &c.Longitude, &c.Elevation, &c.Depth); err != nil {
		return waveform.Coords{}, waveform.ErrNotFound
	}
	return c, nil
}

// InsertCoords records a station's coordinates, valid from validFrom
// onward (the zero time means "always valid").
func (a *ArchiveProvider) InsertCoords(ctx context.Context, id waveform.TraceID, validFrom time.Time, c waveform.Coords) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO station_coords
			(network, station, location, channel, valid_from, latitude, longitude, elevation, depth)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.Network, id.Station, id.Location, id.Channel, unixOrZero(validFrom),
		c.Latitude, c.Longitude, c.Elevation, c.Depth)
	if err != nil {
		return fmt.Errorf("archive: inserting coords for %s: %w", id, err)
	}
	return nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// InsertSegment appends one continuous-recording segment to the
// archive. Segments for the same trace id may be ingested in any
// order and need not be contiguous; Waveform stitches what it finds at
// read time.
func (a *ArchiveProvider) InsertSegment(ctx context.Context, source string, tr waveform.Trace) error {
	blob, err := encodeSamples(tr.Data)
	if err != nil {
		return fmt.Errorf("archive: encoding samples: %w", err)
	}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO waveform_segment
			(network, station, location, channel, start_unix_nanos, dt, sample_count, data, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.ID.Network, tr.ID.Station, tr.ID.Location, tr.ID.Channel,
		tr.StartTime.UnixNano(), tr.Dt, len(tr.Data), blob, source)
	if err != nil {
		return fmt.Errorf("archive: inserting segment for %s: %w", tr.ID, err)
	}
	return nil
}

// Waveform returns the evenly sampled trace for id covering [t0, t1],
// assembled from whichever archived segments overlap that range. Each
// overlapping segment is trimmed to the overlap before segments are
// stitched with waveform.MergeSegments, so a caller always gets back
// data clipped to what it asked for.
func (a *ArchiveProvider) Waveform(ctx context.Context, id waveform.TraceID, t0, t1 time.Time) (waveform.Trace, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT start_unix_nanos, dt, sample_count, data FROM waveform_segment
		WHERE network = ? AND station = ? AND location = ? AND channel = ?
		ORDER BY start_unix_nanos ASC`,
		id.Network, id.Station, id.Location, id.Channel)
	if err != nil {
		return waveform.Trace{}, fmt.Errorf("archive: querying segments for %s: %w", id, err)
	}
	defer rows.Close()

	var segments []waveform.Trace
	for rows.Next() {
		var startNanos int64
		var dt float64
		var n int
		var blob []byte
		if err := rows.Scan(&startNanos, &dt, &n, &blob); err != nil {
			return waveform.Trace{}, fmt.Errorf("archive: scanning segment for %s: %w", id, err)
		}
		data, err := decodeSamples(blob, n)
		if err != nil {
			return waveform.Trace{}, fmt.Errorf("archive: decoding segment for %s: %w", id, err)
		}
		full := waveform.Trace{ID: id, Dt: dt, StartTime: time.Unix(0, startNanos).UTC(), Data: data}
		if trimmed, ok := trimToRange(full, t0, t1); ok {
			segments = append(segments, trimmed)
		}
	}
	if err := rows.Err(); err != nil {
		return waveform.Trace{}, fmt.Errorf("archive: reading segments for %s: %w", id, err)
	}
	if len(segments) == 0 {
		return waveform.Trace{}, waveform.ErrNotFound
	}
	if len(segments) == 1 {
		return segments[0], nil
	}
	return waveform.MergeSegments(segments)
}

// trimToRange clips tr to its overlap with [t0, t1], returning ok=false
// if the two don't overlap at all.
func trimToRange(tr waveform.Trace, t0, t1 time.Time) (waveform.Trace, bool) {
	if tr.EndTime().Before(t0) || tr.StartTime.After(t1) {
		return waveform.Trace{}, false
	}
	first, last := 0, len(tr.Data)-1
	if tr.StartTime.Before(t0) {
		first = int(t0.Sub(tr.StartTime).Seconds()/tr.Dt + 0.5)
	}
	if tr.EndTime().After(t1) {
		last = int(t1.Sub(tr.StartTime).Seconds()/tr.Dt + 0.5)
	}
	if first < 0 {
		first = 0
	}
	if last >= len(tr.Data) {
		last = len(tr.Data) - 1
	}
	if first > last {
		return waveform.Trace{}, false
	}
	out := tr.Clone()
	out.Data = out.Data[first : last+1]
	out.StartTime = tr.StartTime.Add(time.Duration(float64(first) * tr.Dt * float64(time.Second)))
	return out, true
}

func encodeSamples(data []float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSamples(blob []byte, n int) ([]float64, error) {
	data := make([]float64, n)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, data); err != nil {
		return nil, err
	}
	return data, nil
}
