package pairs

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/alitto/pond"

	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/fetch"
	"github.com/requake-go/requake/internal/geo"
	"github.com/requake-go/requake/internal/rqerr"
	"github.com/requake-go/requake/internal/signal"
	"github.com/requake-go/requake/internal/waveform"
)

// Config bundles the pair-similarity scan tunables.
type Config struct {
	TraceIDs      []string
	Window        fetch.Window
	SearchRangeKM float64
	MaxShiftSec   float64
	FreqMin       float64
	FreqMax       float64
	FilterOrder   int
	AllowNegative bool
	Workers       int
}

// Scanner enumerates the spatially eligible pairs of a catalog and runs
// pair similarity on each.
type Scanner struct {
	Provider waveform.Provider
	Config   Config
	Logf     func(format string, args ...interface{})
}

func (s *Scanner) logf(format string, args ...interface{}) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// skipTracker marks an (evid, traceid-attempt-exhausted) event as
// permanently unusable for the remainder of a scan:
// "record an event as skipped after exhausting all ids so subsequent
// pairs referring to it short-circuit."
type skipTracker struct {
	mu      sync.Mutex
	skipped map[string]bool
}

func newSkipTracker() *skipTracker {
	return &skipTracker{skipped: make(map[string]bool)}
}

func (t *skipTracker) isSkipped(evid string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.skipped[evid]
}

func (t *skipTracker) markSkipped(evid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.skipped[evid] = true
}

// ScanCatalog enumerates C(N,2) event pairs of events (assumed already
// deduplicated and sorted), checks spatial
// eligibility, and writes one row per successfully processed pair to w.
// The outer loop (fixed event1) is parallelized with a bounded
// pond.Pool; w.WriteRow is safe for concurrent use. Returns the number
// of pairs visited, which is always C(N,2) regardless of how many pairs
// are actually written.
func (s *Scanner) ScanCatalog(ctx context.Context, events []catalog.Event, w *Writer) (int, error) {
	n := len(events)
	if n < 2 {
		return 0, fmt.Errorf("pairs: need at least 2 events, got %d", n)
	}
	workers := s.Config.Workers
	if workers < 1 {
		workers = 1
	}
	pool := pond.New(workers, 0, pond.MinWorkers(workers), pond.Context(ctx))

	skip := newSkipTracker()
	visited := 0
	var visitedMu sync.Mutex

	for i := 0; i < n-1; i++ {
		ev1 := events[i]
		rest := events[i+1:]
		pool.Submit(func() {
			count := s.processOuterIteration(ctx, ev1, rest, skip, w)
			visitedMu.Lock()
			visited += count
			visitedMu.Unlock()
		})
	}
	pool.StopAndWait()
	return visited, nil
}

// processOuterIteration runs the inner loop for one fixed event1 value,
// maintaining its own event1-trace cache (purged implicitly: a new
// cache is built per outer iteration).
func (s *Scanner) processOuterIteration(ctx context.Context, ev1 catalog.Event, rest []catalog.Event, skip *skipTracker, w *Writer) int {
	cache := make(map[string]fetch.Result)
	count := 0
	for _, ev2 := range rest {
		count++
		if skip.isSkipped(ev1.EVID) || skip.isSkipped(ev2.EVID) {
			continue
		}
		if !s.pairOK(ev1, ev2) {
			continue
		}
		pair, err := s.processPair(ctx, ev1, ev2, cache, skip)
		if err != nil {
			if rqe, ok := err.(*rqerr.Error); ok && !rqe.IsFatal() {
				s.logf("%v", rqe)
				continue
			}
			s.logf("fatal: %v", err)
			continue
		}
		if pair == nil {
			continue
		}
		if err := w.WriteRow(*pair); err != nil {
			s.logf("pairs: failed writing row for %s-%s: %v", ev1.EVID, ev2.EVID, err)
		}
	}
	return count
}

func (s *Scanner) pairOK(ev1, ev2 catalog.Event) bool {
	lat1, lon1 := derefOrZero(ev1.Lat), derefOrZero(ev1.Lon)
	lat2, lon2 := derefOrZero(ev2.Lat), derefOrZero(ev2.Lon)
	return geo.DistanceKM(lat1, lon1, lat2, lon2) <= s.Config.SearchRangeKM
}

// processPair selects a trace id, fetches both event windows (caching
// event1's), aligns, and cross-correlates. A nil, nil result means the
// pair was skipped for a recoverable reason already logged.
func (s *Scanner) processPair(ctx context.Context, ev1, ev2 catalog.Event, cache map[string]fetch.Result, skip *skipTracker) (*EventPair, error) {
	traceIDs, err := s.rankedTraceIDs(ctx, ev1, ev2)
	if err != nil {
		return nil, rqerr.Wrap(rqerr.KindNoMetadata, "resolving candidate trace ids", err)
	}

	ev1Fetchable := false
	for _, traceID := range traceIDs {
		r1, ok1 := cache[traceID]
		var err1 error
		if !ok1 {
			r1, err1 = fetch.Fetch(ctx, s.Provider, ev1, traceID, s.Config.Window)
			if err1 == nil {
				cache[traceID] = r1
			}
		}
		if err1 != nil {
			continue
		}
		ev1Fetchable = true
		r2, err2 := fetch.Fetch(ctx, s.Provider, ev2, traceID, s.Config.Window)
		if err2 != nil {
			continue
		}

		if r1.Trace.Dt != r2.Trace.Dt {
			return nil, rqerr.SampleRateMismatch(fmt.Sprintf(
				"%s vs %s have different sampling intervals", ev1.EVID, ev2.EVID))
		}

		lag, lagSec, ccMax, err := s.correlate(r1.Trace, r2.Trace)
		if err != nil {
			return nil, err
		}

		e1 := ev1
		e1.TraceID, e1.Lon, e1.Lat, e1.Depth, e1.Mag, e1.MagType =
			traceID, ptr(r1.Stats.EventLon), ptr(r1.Stats.EventLat), ptr(r1.Stats.EventDepth), r1.Stats.Mag, r1.Stats.MagType
		e2 := ev2
		e2.TraceID, e2.Lon, e2.Lat, e2.Depth, e2.Mag, e2.MagType =
			traceID, ptr(r2.Stats.EventLon), ptr(r2.Stats.EventLat), ptr(r2.Stats.EventDepth), r2.Stats.Mag, r2.Stats.MagType

		return &EventPair{
			Event1:     e1,
			Event2:     e2,
			TraceID:    traceID,
			LagSamples: lag,
			LagSec:     lagSec,
			CCMax:      ccMax,
		}, nil
	}

	// Exhausted every candidate trace id for this pair. If event 1 was
	// fetchable on at least one of them, the fault lies with event 2;
	// otherwise event 1 itself has no usable waveform.
	if ev1Fetchable {
		skip.markSkipped(ev2.EVID)
	} else {
		skip.markSkipped(ev1.EVID)
	}
	return nil, rqerr.NoWaveformf("unable to get waveform data for event %s or %s: all candidate trace ids exhausted", ev1.EVID, ev2.EVID)
}

// correlate applies identical processing to both traces and returns
// the lag-optimized normalized cross-correlation.
func (s *Scanner) correlate(tr1, tr2 waveform.Trace) (lag int, lagSec, ccMax float64, err error) {
	a := signal.Taper(tr1.Data, 0.05)
	b := signal.Taper(tr2.Data, 0.05)
	a, err = signal.Bandpass(a, tr1.Dt, s.Config.FreqMin, s.Config.FreqMax, s.Config.FilterOrder)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("pairs: filtering trace 1: %w", err)
	}
	b, err = signal.Bandpass(b, tr2.Dt, s.Config.FreqMin, s.Config.FreqMax, s.Config.FilterOrder)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("pairs: filtering trace 2: %w", err)
	}
	maxLag := int(s.Config.MaxShiftSec / tr1.Dt)
	c := signal.CrossCorrelate(a, b, tr1.Dt, maxLag, s.Config.AllowNegative)
	return c.Lag, c.LagSec, c.CCMax, nil
}

// rankedTraceIDs returns the candidate trace ids for a pair, ordered by
// proximity of the station to the great-circle midpoint between the two
// events. A singleton list is returned unchanged.
func (s *Scanner) rankedTraceIDs(ctx context.Context, ev1, ev2 catalog.Event) ([]string, error) {
	if len(s.Config.TraceIDs) <= 1 {
		return s.Config.TraceIDs, nil
	}
	midLat, midLon := geo.Midpoint(derefOrZero(ev1.Lat), derefOrZero(ev1.Lon), derefOrZero(ev2.Lat), derefOrZero(ev2.Lon))

	type candidate struct {
		id   string
		dist float64
	}
	candidates := make([]candidate, 0, len(s.Config.TraceIDs))
	for _, raw := range s.Config.TraceIDs {
		id, err := waveform.ParseTraceID(raw)
		if err != nil {
			continue
		}
		coords, err := s.Provider.Coords(ctx, id, ev1.OrigTime)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			id:   raw,
			dist: geo.DistanceKM(coords.Latitude, coords.Longitude, midLat, midLon),
		})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("pairs: no resolvable station coordinates among configured trace ids")
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out, nil
}

func derefOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func ptr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
