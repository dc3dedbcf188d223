package waveform

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/requake-go/requake/internal/conv"
)

// csvFieldGuesses is the closed vocabulary for station metadata CSV
// columns and
// _examples/original_source/requake/waveforms/station_metadata.py.
var csvFieldGuesses = map[string][]string{
	"network":   {"network", "net", "netw"},
	"station":   {"station", "sta", "stat", "name"},
	"location":  {"location", "loc", "locat"},
	"channel":   {"channel", "chan", "ch"},
	"longitude": {"longitude", "lon", "long"},
	"latitude":  {"latitude", "lat"},
	"elevation": {"elevation", "elev", "elevat"},
	"depth":     {"depth", "dep"},
}

// CSVCoordsReader resolves station coordinates from a CSV file with
// loosely-named columns, mapped to the canonical fields by longest
// substring match. Coordinates are static: the time
// argument to Coords is accepted but ignored.
type CSVCoordsReader struct {
	coords map[string]Coords // keyed by TraceID.Key()
}

// NewCSVCoordsReader reads and indexes station coordinates from filename.
func NewCSVCoordsReader(filename string) (*CSVCoordsReader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("waveform: opening station metadata %s: %w", filename, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("waveform: reading station metadata header of %s: %w", filename, err)
	}
	columns := guessStationColumns(headers)
	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		colIndex[h] = i
	}

	reader := &CSVCoordsReader{coords: make(map[string]Coords)}
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		cellOf := func(logical string) string {
			col, ok := columns[logical]
			if !ok {
				return ""
			}
			idx, ok := colIndex[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}
		station := strings.TrimSpace(cellOf("station"))
		if station == "" {
			continue
		}
		net := strings.TrimSpace(cellOf("network"))
		if net == "" {
			net = "@@"
		}
		loc := strings.TrimSpace(cellOf("location"))
		chan_ := strings.TrimSpace(cellOf("channel"))
		id := TraceID{Network: dotsToUnderscore(net), Station: dotsToUnderscore(station), Location: dotsToUnderscore(loc), Channel: dotsToUnderscore(chan_)}

		lon := orZero(conv.FloatOrNil(cellOf("longitude")))
		lat := orZero(conv.FloatOrNil(cellOf("latitude")))
		elev := orZero(conv.FloatOrNil(cellOf("elevation")))
		depth := orZero(conv.FloatOrNil(cellOf("depth")))
		reader.coords[id.Key()] = Coords{Latitude: lat, Longitude: lon, Elevation: elev, Depth: depth}
	}
	return reader, nil
}

func dotsToUnderscore(s string) string { return strings.ReplaceAll(s, ".", "_") }

func orZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// Coords returns the statically-known coordinates for id. The time
// argument is accepted for interface compatibility but ignored.
func (r *CSVCoordsReader) Coords(ctx context.Context, id TraceID, at time.Time) (Coords, error) {
	c, ok := r.coords[id.Key()]
	if !ok {
		return Coords{}, ErrNotFound
	}
	return c, nil
}

func guessStationColumns(headers []string) map[string]string {
	result := make(map[string]string, len(csvFieldGuesses))
	for logical, vocab := range csvFieldGuesses {
		best, bestScore := "", 0
		for _, h := range headers {
			score := conv.FieldMatchScore(h, vocab)
			if score > bestScore {
				bestScore = score
				best = h
			}
		}
		if bestScore > 0 {
			result[logical] = best
		}
	}
	return result
}
