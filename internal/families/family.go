// Package families implements the family builder: grouping
// events into families of repeaters either by shared-event transitive
// closure over thresholded pairs, or by UPGMA hierarchical clustering
// over a correlation-derived distance matrix.
package families

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/geo"
	"github.com/requake-go/requake/internal/rqerr"
	"github.com/requake-go/requake/internal/slip"
)

const yearSeconds = 365 * 24 * 60 * 60

// Family is an append-only set of events sharing one trace id, with
// aggregates recomputed on every insert.
type Family struct {
	Number      int
	TraceID     string
	Valid       bool
	Events      []catalog.Event
	Lon         float64
	Lat         float64
	Depth       float64
	StartTime   time.Time
	EndTime     time.Time
	Duration    float64 // years
	CumulSlip   float64 // cm
	SlipRate    float64 // cm/yr
	CumulMoment float64 // N.m
	MagMin      float64
	MagMax      float64

	slipModel  slip.Model
	slipParams slip.Params
}

// New creates an empty, valid family that will compute slip/moment
// aggregates using the given model and parameters.
func New(number int, model slip.Model, params slip.Params) *Family {
	return &Family{Number: number, Valid: true, slipModel: model, slipParams: params}
}

// contains reports whether ev is already a member, per catalog.Event's
// equality rule.
func (f *Family) contains(ev catalog.Event) bool {
	for _, e := range f.Events {
		if e.Equal(ev) {
			return true
		}
	}
	return false
}

// Append adds ev to the family and recomputes every aggregate.
// An event whose trace id differs from the family's first
// member's trace id is an error. Duplicate events (by catalog.Event
// equality) are silently ignored.
func (f *Family) Append(ev catalog.Event) error {
	if f.contains(ev) {
		return nil
	}
	if f.TraceID == "" {
		f.TraceID = ev.TraceID
	} else if ev.TraceID != f.TraceID {
		return rqerr.New(rqerr.KindInvalidFamily,
			fmt.Sprintf("event %s trace_id %q does not match family trace_id %q",
				ev.EVID, ev.TraceID, f.TraceID))
	}

	f.Events = append(f.Events, ev)
	sort.Slice(f.Events, func(i, j int) bool { return f.Events[i].Before(f.Events[j]) })

	if ev.Lon != nil {
		f.Lon = meanOf(f.Events, func(e catalog.Event) *float64 { return e.Lon })
	}
	if ev.Lat != nil {
		f.Lat = meanOf(f.Events, func(e catalog.Event) *float64 { return e.Lat })
	}
	if ev.Depth != nil {
		f.Depth = meanOf(f.Events, func(e catalog.Event) *float64 { return e.Depth })
	}

	if f.StartTime.IsZero() || ev.OrigTime.Before(f.StartTime) {
		f.StartTime = ev.OrigTime
	}
	if f.EndTime.IsZero() || ev.OrigTime.After(f.EndTime) {
		f.EndTime = ev.OrigTime
	}
	f.Duration = f.EndTime.Sub(f.StartTime).Seconds() / yearSeconds

	if ev.Mag != nil {
		f.updateMagnitudeQuantities(*ev.Mag)
	}
	return nil
}

func (f *Family) updateMagnitudeQuantities(mag float64) {
	if f.MagMin == 0 || mag < f.MagMin {
		f.MagMin = mag
	}
	if f.MagMax == 0 || mag > f.MagMax {
		f.MagMax = mag
	}
	evSlip, err := slip.MagToSlipCM(f.slipModel, mag, f.slipParams)
	if err != nil {
		evSlip = 0
	}
	f.CumulSlip += evSlip

	firstSlip := 0.0
	if len(f.Events) > 0 && f.Events[0].Mag != nil {
		firstSlip, _ = slip.MagToSlipCM(f.slipModel, *f.Events[0].Mag, f.slipParams)
	}
	dSlip := f.CumulSlip - firstSlip
	if f.Duration == 0 {
		f.SlipRate = math.Inf(1)
	} else {
		f.SlipRate = dSlip / f.Duration
	}
	f.CumulMoment += slip.MagToMoment(mag, slip.NewtonMeter)
}

// DistanceFrom returns the great-circle distance in km from the
// family's centroid to (lon, lat), used by `sort_families_by =
// distance_from`.
func (f *Family) DistanceFrom(lon, lat float64) float64 {
	return geo.DistanceKM(f.Lat, f.Lon, lat, lon)
}

func meanOf(events []catalog.Event, field func(catalog.Event) *float64) float64 {
	var values []float64
	for _, e := range events {
		if v := field(e); v != nil {
			values = append(values, *v)
		}
	}
	return geo.Mean(values)
}
