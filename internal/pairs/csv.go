package pairs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"
)

const pairTimeLayout = "2006-01-02T15:04:05.999999Z"

// Writer streams EventPair rows to a CSV file, safe for concurrent use
// by multiple goroutines processing different outer-loop iterations
//.
type Writer struct {
	mu  sync.Mutex
	w   *csv.Writer
	out io.Closer
}

// NewWriter creates filename (truncating any prior contents) and writes
// the fixed header row.
func NewWriter(filename string) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("pairs: creating %s: %w", filename, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("pairs: writing header to %s: %w", filename, err)
	}
	w.Flush()
	return &Writer{w: w, out: f}, nil
}

// WriteRow appends one pair record and flushes, so a crash leaves the
// file readable up to the last complete row.
func (pw *Writer) WriteRow(p EventPair) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	row := []string{
		p.Event1.EVID, p.Event2.EVID, p.TraceID,
		p.Event1.OrigTime.UTC().Format(pairTimeLayout),
		floatField(p.Event1.Lon), floatField(p.Event1.Lat), floatField(p.Event1.Depth),
		p.Event1.MagType, floatField(p.Event1.Mag),
		p.Event2.OrigTime.UTC().Format(pairTimeLayout),
		floatField(p.Event2.Lon), floatField(p.Event2.Lat), floatField(p.Event2.Depth),
		p.Event2.MagType, floatField(p.Event2.Mag),
		strconv.Itoa(p.LagSamples),
		strconv.FormatFloat(p.LagSec, 'g', -1, 64),
		strconv.FormatFloat(p.CCMax, 'g', -1, 64),
	}
	if err := pw.w.Write(row); err != nil {
		return fmt.Errorf("pairs: writing row: %w", err)
	}
	pw.w.Flush()
	return pw.w.Error()
}

// Close flushes and closes the underlying file.
func (pw *Writer) Close() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.w.Flush()
	return pw.out.Close()
}

func floatField(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

// ReadFile reads back a pair-stream CSV written by Writer.
func ReadFile(filename string) ([]EventPair, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("pairs: opening %s: %w", filename, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("pairs: reading header of %s: %w", filename, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}

	var out []EventPair
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("pairs: reading row of %s: %w", filename, err)
		}
		p, err := rowToPair(idx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func rowToPair(idx map[string]int, row []string) (EventPair, error) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	t1, err := time.Parse(pairTimeLayout, cell("orig_time1"))
	if err != nil {
		return EventPair{}, fmt.Errorf("pairs: invalid orig_time1 %q: %w", cell("orig_time1"), err)
	}
	t2, err := time.Parse(pairTimeLayout, cell("orig_time2"))
	if err != nil {
		return EventPair{}, fmt.Errorf("pairs: invalid orig_time2 %q: %w", cell("orig_time2"), err)
	}
	lagSamples, _ := strconv.Atoi(cell("lag_samples"))
	lagSec, _ := strconv.ParseFloat(cell("lag_sec"), 64)
	ccMax, _ := strconv.ParseFloat(cell("cc_max"), 64)
	traceID := cell("trace_id")

	return EventPair{
		Event1: eventFromCells(cell("evid1"), t1, cell("lon1"), cell("lat1"), cell("depth_km1"),
			cell("mag_type1"), cell("mag1"), traceID),
		Event2: eventFromCells(cell("evid2"), t2, cell("lon2"), cell("lat2"), cell("depth_km2"),
			cell("mag_type2"), cell("mag2"), traceID),
		TraceID:    traceID,
		LagSamples: lagSamples,
		LagSec:     lagSec,
		CCMax:      ccMax,
	}, nil
}
