package scanner

import (
	"fmt"
	"time"

	"github.com/requake-go/requake/internal/arrival"
	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/evid"
)

// buildEvent derives a detected event's metadata from the template's
// station/event geometry and the absolute time of the matched P
// arrival, per `_build_event`. If the arrival model can't be evaluated
// (a non-finite station or event coordinate in the template header;
// unset SAC fields read back as the finite -12345), the origin time
// falls back to the P arrival time itself and lon/lat/depth are left
// unset — matching the original's broad `except Exception` fallback.
func buildEvent(tpl Template, traceID string, pArrivalAbsolute time.Time) catalog.Event {
	h := tpl.File.Header
	origTime := pArrivalAbsolute
	var lat, lon, depth *float64

	arrivals, err := arrival.Get(h.StationLat, h.StationLon, h.EventLat, h.EventLon, h.EventDepth)
	if err == nil {
		origTime = pArrivalAbsolute.Add(-time.Duration(arrivals.P.TravelTimeSec * float64(time.Second)))
		evLat, evLon, evDepth := h.EventLat, h.EventLon, h.EventDepth
		lat, lon, depth = &evLat, &evLon, &evDepth
	}

	return catalog.Event{
		EVID:     evid.Generate(origTime),
		OrigTime: origTime,
		Lat:      lat,
		Lon:      lon,
		Depth:    depth,
		TraceID:  traceID,
		Author:   "requake-go",
	}
}

func detectionLine(ev catalog.Event, ccMax float64) string {
	return fmt.Sprintf("%s|%.2f\n", ev.FDSNText(), ccMax)
}
