package families

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/conv"
	"github.com/requake-go/requake/internal/rqerr"
	"github.com/requake-go/requake/internal/slip"
)

// SortMode selects the ordering families are written in
// `sort_families_by`.
type SortMode string

const (
	SortByTime         SortMode = "time"
	SortByLongitude    SortMode = "longitude"
	SortByLatitude     SortMode = "latitude"
	SortByDepth        SortMode = "depth"
	SortByDistanceFrom SortMode = "distance_from"
)

var familyCSVHeader = []string{
	"evid", "trace_id", "orig_time", "lon", "lat", "depth_km",
	"mag_type", "mag", "family_number", "valid",
}

const familyTimeLayout = "2006-01-02T15:04:05.999999Z"

// Sort orders families in place by mode. distance_from
// requires both refLon and refLat; any other combination or an unknown
// mode is a ConfigError.
func Sort(fams []*Family, mode SortMode, refLon, refLat *float64) error {
	var less func(i, j int) bool
	switch mode {
	case SortByTime:
		less = func(i, j int) bool { return fams[i].StartTime.Before(fams[j].StartTime) }
	case SortByLongitude:
		less = func(i, j int) bool { return fams[i].Lon < fams[j].Lon }
	case SortByLatitude:
		less = func(i, j int) bool { return fams[i].Lat < fams[j].Lat }
	case SortByDepth:
		less = func(i, j int) bool { return fams[i].Depth < fams[j].Depth }
	case SortByDistanceFrom:
		if refLon == nil || refLat == nil {
			return rqerr.New(rqerr.KindConfigError,
				`sort_families_by = distance_from requires distance_from_lon and distance_from_lat`)
		}
		less = func(i, j int) bool {
			return fams[i].DistanceFrom(*refLon, *refLat) < fams[j].DistanceFrom(*refLon, *refLat)
		}
	default:
		return rqerr.New(rqerr.KindConfigError, fmt.Sprintf("unknown sort_families_by %q", mode))
	}
	sort.SliceStable(fams, less)
	return nil
}

// WriteCSV writes families to filename, one row per member event.
// Family numbers in the output are assigned
// sequentially from the families' current slice order (call Sort
// first); a family's own Number field is not consulted.
func WriteCSV(filename string, fams []*Family) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("families: creating %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(familyCSVHeader); err != nil {
		return fmt.Errorf("families: writing header: %w", err)
	}
	for number, fam := range fams {
		for _, ev := range fam.Events {
			row := []string{
				ev.EVID, fam.TraceID, ev.OrigTime.UTC().Format(familyTimeLayout),
				floatOrEmpty(ev.Lon), floatOrEmpty(ev.Lat), floatOrEmpty(ev.Depth),
				ev.MagType, floatOrEmpty(ev.Mag),
				strconv.Itoa(number), strconv.FormatBool(fam.Valid),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("families: writing row: %w", err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

// ReadCSV reads back a family CSV written by WriteCSV, grouping
// consecutive rows by family_number, per
// `_read_families_from_catalog_scan`.
func ReadCSV(filename string, model slip.Model, params slip.Params) ([]*Family, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("families: opening %s: %w", filename, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("families: reading header of %s: %w", filename, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []*Family
	var current *Family
	oldNumber := -1

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("families: reading row of %s: %w", filename, err)
		}
		number, err := strconv.Atoi(cell(row, "family_number"))
		if err != nil {
			return nil, fmt.Errorf("families: invalid family_number in %s: %w", filename, err)
		}
		if number != oldNumber {
			if current != nil {
				out = append(out, current)
			}
			current = New(number, model, params)
			oldNumber = number
		}
		origTime, err := time.Parse(familyTimeLayout, cell(row, "orig_time"))
		if err != nil {
			return nil, fmt.Errorf("families: invalid orig_time in %s: %w", filename, err)
		}
		ev := catalog.Event{
			EVID:     cell(row, "evid"),
			OrigTime: origTime,
			Lon:      conv.FloatOrNil(cell(row, "lon")),
			Lat:      conv.FloatOrNil(cell(row, "lat")),
			Depth:    conv.FloatOrNil(cell(row, "depth_km")),
			MagType:  cell(row, "mag_type"),
			Mag:      conv.FloatOrNil(cell(row, "mag")),
			TraceID:  cell(row, "trace_id"),
		}
		if err := current.Append(ev); err != nil {
			return nil, err
		}
		current.Valid = cell(row, "valid") == "true" || cell(row, "valid") == "True"
	}
	if current != nil {
		out = append(out, current)
	}
	return out, nil
}
