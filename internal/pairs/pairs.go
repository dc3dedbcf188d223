// Package pairs implements the pairwise similarity engine
// and the catalog scanner that drives it: for every
// spatially eligible event pair, pick a station, fetch two event
// windows, align, cross-correlate, and stream one pair record.
package pairs

import (
	"github.com/requake-go/requake/internal/catalog"
)

// EventPair is one row of the pair stream. LagSamples is the integer shift of Event2 with
// respect to Event1.
type EventPair struct {
	Event1     catalog.Event
	Event2     catalog.Event
	TraceID    string
	LagSamples int
	LagSec     float64
	CCMax      float64
}

// csvHeader is the fixed column order of this pair stream CSV.
var csvHeader = []string{
	"evid1", "evid2", "trace_id",
	"orig_time1", "lon1", "lat1", "depth_km1", "mag_type1", "mag1",
	"orig_time2", "lon2", "lat2", "depth_km2", "mag_type2", "mag2",
	"lag_samples", "lag_sec", "cc_max",
}
