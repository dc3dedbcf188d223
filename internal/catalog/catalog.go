package catalog

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/requake-go/requake/internal/geo"
)

// Catalog is an ordered, deduplicated sequence of events.
type Catalog []Event

func (c Catalog) String() string {
	out := ""
	for i, ev := range c {
		if i > 0 {
			out += "\n"
		}
		out += ev.String()
	}
	return out
}

// Deduplicate removes events with duplicate (evid, trace_id) keys,
// keeping the first occurrence. In place.
func (c *Catalog) Deduplicate() {
	seen := make(map[string]struct{}, len(*c))
	out := (*c)[:0]
	for _, ev := range *c {
		k := ev.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, ev)
	}
	*c = out
}

// Sort orders events by origin time. In place.
func (c Catalog) Sort() {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Before(c[j]) })
}

// Read appends events from an FDSN text file, skipping comment and blank
// lines, then deduplicates. Events already present are left untouched.
func (c *Catalog) Read(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("opening catalog file %s: %w", filename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		ev, err := FromFDSNText(line)
		if err != nil {
			return err
		}
		*c = append(*c, ev)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading catalog file %s: %w", filename, err)
	}
	c.Deduplicate()
	return nil
}

// Write renders the catalog as an FDSN text file, one event per line,
// sorted by origin time.
func (c Catalog) Write(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating catalog file %s: %w", filename, err)
	}
	defer f.Close()

	sorted := make(Catalog, len(c))
	copy(sorted, c)
	sorted.Sort()

	w := bufio.NewWriter(f)
	for _, ev := range sorted {
		if _, err := fmt.Fprintln(w, ev.FDSNText()); err != nil {
			return fmt.Errorf("writing catalog file %s: %w", filename, err)
		}
	}
	return w.Flush()
}

// FixNonLocatable assigns every event missing lat/lon the mean of
// traceCoords and a depth of 10km non-locatable event
// policy. traceCoords maps each configured trace_id to (lat, lon).
func (c Catalog) FixNonLocatable(traceCoords map[string][2]float64) {
	needsFix := false
	for _, ev := range c {
		if ev.Lat == nil || ev.Lon == nil {
			needsFix = true
			break
		}
	}
	if !needsFix {
		return
	}

	lats := make([]float64, 0, len(traceCoords))
	lons := make([]float64, 0, len(traceCoords))
	for _, coords := range traceCoords {
		lats = append(lats, coords[0])
		lons = append(lons, coords[1])
	}
	meanLat, meanLon := geo.Mean(lats), geo.Mean(lons)
	depth := 10.0

	for i, ev := range c {
		if ev.Lat == nil || ev.Lon == nil {
			lat, lon, d := meanLat, meanLon, depth
			c[i].Lat = &lat
			c[i].Lon = &lon
			c[i].Depth = &d
		}
	}
}
