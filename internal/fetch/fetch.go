// Package fetch implements the event-waveform fetcher:
// given a cataloged event and a trace id, it resolves station
// coordinates, predicts the P arrival, requests the windowed trace from
// a waveform.Provider, demeans it, and attaches the bookkeeping a
// downstream correlation step needs.
package fetch

import (
	"context"
	"time"

	"github.com/requake-go/requake/internal/arrival"
	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/rqerr"
	"github.com/requake-go/requake/internal/signal"
	"github.com/requake-go/requake/internal/waveform"
)

// Stats carries the arrival-time bookkeeping attached to a
// fetched trace.
type Stats struct {
	EVID        string
	EventLat    float64
	EventLon    float64
	EventDepth  float64
	Mag         *float64
	MagType     string
	Coords      waveform.Coords
	DistanceKM  float64
	DistanceDeg float64
	PArrival    time.Time
	SArrival    time.Time
}

// Result is a demeaned, windowed trace plus its attached stats.
type Result struct {
	Trace waveform.Trace
	Stats Stats
}

// Window bundles the two configuration values the fetch window depends
// on: seconds of signal included before the predicted P arrival, and
// the total window length in seconds.
type Window struct {
	PreP   time.Duration
	Length time.Duration
}

// Fetch resolves an event's arrival window and retrieves the matching
// trace segment end to end. Every failure mode — missing
// metadata, an unresolvable arrival, or a missing waveform — is folded
// into a single recoverable *rqerr.Error of kind NoWaveform; the
// fetcher never retries.
func Fetch(ctx context.Context, provider waveform.Provider, ev catalog.Event, traceID string, win Window) (Result, error) {
	id, err := waveform.ParseTraceID(traceID)
	if err != nil {
		return Result{}, rqerr.Wrap(rqerr.KindNoWaveform, "invalid trace id "+traceID, err)
	}

	coords, err := provider.Coords(ctx, id, ev.OrigTime)
	if err != nil {
		return Result{}, rqerr.Wrap(rqerr.KindNoWaveform,
			"no station coordinates for "+traceID+" at event "+ev.EVID, err)
	}

	evLat, evLon, evDepth := derefOrZero(ev.Lat), derefOrZero(ev.Lon), derefOrZero(ev.Depth)
	if evDepth < 0 {
		evDepth = 0
	}
	arrivals, err := arrival.Get(coords.Latitude, coords.Longitude, evLat, evLon, evDepth)
	if err != nil {
		return Result{}, rqerr.Wrap(rqerr.KindNoWaveform,
			"unable to compute arrival times for event "+ev.EVID+" and trace_id "+traceID, err)
	}

	pArrival := ev.OrigTime.Add(time.Duration(arrivals.P.TravelTimeSec * float64(time.Second)))
	sArrival := ev.OrigTime.Add(time.Duration(arrivals.S.TravelTimeSec * float64(time.Second)))

	t0 := pArrival.Add(-win.PreP)
	t1 := t0.Add(win.Length)

	tr, err := provider.Waveform(ctx, id, t0, t1)
	if err != nil {
		return Result{}, rqerr.Wrap(rqerr.KindNoWaveform,
			"unable to get waveform data for event "+ev.EVID+" and trace_id "+traceID+". Skipping event.", err)
	}
	tr.Data = signal.Demean(tr.Data)

	return Result{
		Trace: tr,
		Stats: Stats{
			EVID:        ev.EVID,
			EventLat:    evLat,
			EventLon:    evLon,
			EventDepth:  evDepth,
			Mag:         ev.Mag,
			MagType:     ev.MagType,
			Coords:      coords,
			DistanceKM:  arrivals.DistanceKM,
			DistanceDeg: arrivals.DistanceDeg,
			PArrival:    pArrival,
			SArrival:    sArrival,
		},
	}, nil
}

func derefOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
