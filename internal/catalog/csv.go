package catalog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/requake-go/requake/internal/conv"
	"github.com/requake-go/requake/internal/evid"
)

// csvFieldGuesses is the closed vocabulary of candidate column names for
// each logical field CSV ingestion rules. Underscore and
// space variants are both tried since operators export either.
var csvFieldGuesses = map[string][]string{
	"evid":      {"evid", "event_id", "eventid", "id", "evidid"},
	"orig_time": {"time", "orig_time", "origin_time", "origin_time_utc", "origin_time_iso"},
	"year":      {"year", "yr", "yyyy"},
	"month":     {"month", "mon", "mo", "mm"},
	"day":       {"day", "dy", "dd"},
	"hour":      {"hour", "hr", "h", "hh"},
	"minute":    {"minute", "min"},
	"seconds":   {"seconds", "second", "sec", "s", "ss"},
	"lat":       {"lat", "latitude"},
	"lon":       {"lon", "longitude"},
	"depth":     {"depth", "depth_km"},
	"mag":       {"mag", "magnitude"},
	"mag_type":  {"mag_type", "magnitude_type"},
}

func init() {
	for k, guesses := range csvFieldGuesses {
		expanded := make([]string, 0, len(guesses)*2)
		for _, g := range guesses {
			expanded = append(expanded, g)
			spaced := ""
			for _, r := range g {
				if r == '_' {
					spaced += " "
				} else {
					spaced += string(r)
				}
			}
			if spaced != g {
				expanded = append(expanded, spaced)
			}
		}
		csvFieldGuesses[k] = expanded
	}
}

// guessColumns maps each logical field to the best-matching header
// column name, following read_catalog_from_csv's per-field best-match
// search: for every logical field, find the header column whose score
// against that field's vocabulary is highest.
func guessColumns(headers []string) (map[string]string, error) {
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
	if len(result) == 0 {
		return nil, fmt.Errorf("unable to identify any field in CSV header")
	}
	if result["orig_time"] == "" {
		for _, part := range []string{"year", "month", "day", "hour", "minute", "seconds"} {
			if result[part] == "" {
				return nil, fmt.Errorf("unable to identify all necessary date-time fields")
			}
		}
	}
	return result, nil
}

// detectDelimiter inspects the first five lines of filename after the
// header and counts commas vs. semicolons to pick a delimiter, falling
// back to a single space.
func detectDelimiter(filename string) (rune, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("opening CSV file %s: %w", filename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Scan() // skip the header line
	var sample string
	for i := 0; i < 5 && scanner.Scan(); i++ {
		sample += scanner.Text() + "\n"
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading CSV file %s: %w", filename, err)
	}

	ncommas, nsemicolons := 0, 0
	for _, r := range sample {
		switch r {
		case ',':
			ncommas++
		case ';':
			nsemicolons++
		}
	}
	const minLines = 5
	switch {
	case ncommas >= minLines:
		return ',', nil
	case nsemicolons >= minLines:
		return ';', nil
	default:
		return ' ', nil
	}
}

// ReadCSV ingests a catalog from a CSV file with auto-detected delimiter
// and closed-vocabulary column guessing.
func ReadCSV(filename string) (Catalog, error) {
	delimiter, err := detectDelimiter(filename)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file %s: %w", filename, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delimiter
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header of %s: %w", filename, err)
	}
	fields, err := guessColumns(headers)
	if err != nil {
		return nil, err
	}
	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		colIndex[h] = i
	}

	var cat Catalog
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row of %s: %w", filename, err)
		}
		ev, ok, err := rowToEvent(row, colIndex, fields)
		if err != nil {
			return nil, err
		}
		if ok {
			cat = append(cat, ev)
		}
	}
	return cat, nil
}

func cell(row []string, colIndex map[string]int, fields map[string]string, logical string) string {
	col, ok := fields[logical]
	if !ok {
		return ""
	}
	idx, ok := colIndex[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func rowToEvent(row []string, colIndex map[string]int, fields map[string]string) (Event, bool, error) {
	var origTime time.Time
	if fields["orig_time"] != "" {
		raw := cell(row, colIndex, fields, "orig_time")
		t, err := parseFlexibleTime(raw)
		if err != nil {
			return Event{}, false, fmt.Errorf("parsing origin time %q: %w", raw, err)
		}
		origTime = t
	} else {
		year := conv.IntOrNil(cell(row, colIndex, fields, "year"))
		month := conv.IntOrNil(cell(row, colIndex, fields, "month"))
		day := conv.IntOrNil(cell(row, colIndex, fields, "day"))
		hour := conv.IntOrNil(cell(row, colIndex, fields, "hour"))
		minute := conv.IntOrNil(cell(row, colIndex, fields, "minute"))
		seconds := conv.FloatOrNil(cell(row, colIndex, fields, "seconds"))
		if year == nil || month == nil || day == nil {
			return Event{}, false, nil
		}
		h, m, s := 0, 0, 0.0
		if hour != nil {
			h = *hour
		}
		if minute != nil {
			m = *minute
		}
		if seconds != nil {
			s = *seconds
		}
		origTime = time.Date(*year, time.Month(*month), *day, h, m, 0, 0, time.UTC).
			Add(time.Duration(s * float64(time.Second)))
	}

	id := cell(row, colIndex, fields, "evid")
	if id == "" {
		id = evid.Generate(origTime)
	}

	return Event{
		EVID:     id,
		OrigTime: origTime.UTC(),
		Lat:      conv.FloatOrNil(cell(row, colIndex, fields, "lat")),
		Lon:      conv.FloatOrNil(cell(row, colIndex, fields, "lon")),
		Depth:    conv.FloatOrNil(cell(row, colIndex, fields, "depth")),
		MagType:  cell(row, colIndex, fields, "mag_type"),
		Mag:      conv.FloatOrNil(cell(row, colIndex, fields, "mag")),
	}, true, nil
}

// parseFlexibleTime accepts the handful of ISO-8601-like layouts a CSV
// origin-time column is likely to use.
func parseFlexibleTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999",
		"2006-01-02 15:04:05.999999",
	}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
