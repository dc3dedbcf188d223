package templates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/requake-go/requake/internal/families"
	"github.com/requake-go/requake/internal/fetch"
	"github.com/requake-go/requake/internal/geo"
	"github.com/requake-go/requake/internal/rqerr"
	"github.com/requake-go/requake/internal/sacio"
	"github.com/requake-go/requake/internal/waveform"
)

// Options configures template construction
// `cc_pre_P`/`cc_trace_length`/`cc_freq_min`/`cc_freq_max`/`cc_max_shift`/
// `cc_allow_negative`/`normalize_traces_before_averaging` table.
type Options struct {
	Window               fetch.Window
	MaxShiftSec          float64
	FreqMin, FreqMax     float64
	FilterOrder          int
	AllowNegative        bool
	NormalizeBeforeStack bool
	TemplateDir          string
}

// Template is a built stack trace plus the member traces it was aligned
// from.
type Template struct {
	Family   *families.Family
	Members  []fetch.Result
	Stack    fetch.Result
	PArrival time.Time
	SArrival time.Time
	CCMean   float64
}

// Build fetches every family member's waveform, aligns them by
// cross-correlation, and stacks them into a template trace. A member
// whose waveform can't be fetched is skipped (recoverable
// NoWaveform), matching `_build_template`'s per-event
// `except NoWaveformError` handling; Build fails only if every member is
// unfetchable.
func Build(ctx context.Context, provider waveform.Provider, fam *families.Family, opts Options) (Template, error) {
	var results []fetch.Result
	for _, ev := range fam.Events {
		r, err := fetch.Fetch(ctx, provider, ev, fam.TraceID, opts.Window)
		if err != nil {
			continue
		}
		results = append(results, r)
	}
	if len(results) == 0 {
		return Template{}, rqerr.New(rqerr.KindNoWaveform,
			fmt.Sprintf("no waveform data available for any event in family %d", fam.Number))
	}

	members := newMembers(results)
	// maxLag is expressed in samples internally; it's derived from the
	// configured shift in seconds using the first member's sampling
	// interval, matching pairs.Scanner.correlate's int(MaxShiftSec/dt).
	maxLag := int(opts.MaxShiftSec / members[0].Result.Trace.Dt)
	if err := alignTraces(members, maxLag, opts.FreqMin, opts.FreqMax,
		opts.FilterOrder, opts.AllowNegative, opts.NormalizeBeforeStack); err != nil {
		return Template{}, err
	}
	stack := stackTraces(members, opts.NormalizeBeforeStack)

	aligned := make([]fetch.Result, len(members))
	ccSum := 0.0
	for i, m := range members {
		aligned[i] = m.Result
		ccSum += m.CCMean
	}

	return Template{
		Family:   fam,
		Members:  aligned,
		Stack:    stack.Result,
		PArrival: stack.PArrival,
		SArrival: stack.SArrival,
		CCMean:   ccSum / float64(len(members)),
	}, nil
}

// WriteSAC writes the template's stack trace to
// `<TemplateDir>/templateNN.<trace_id>.sac` and
// `_build_template`'s file naming and header population.
func WriteSAC(tpl Template, opts Options, coords waveform.Coords) error {
	if err := os.MkdirAll(opts.TemplateDir, 0o755); err != nil {
		return fmt.Errorf("templates: creating %s: %w", opts.TemplateDir, err)
	}
	filename := filepath.Join(opts.TemplateDir,
		fmt.Sprintf("template%02d.%s.sac", tpl.Family.Number, tpl.Stack.Trace.ID.String()))

	header := sacio.Header{
		Delta:            tpl.Stack.Trace.Dt,
		B:                0,
		StationLat:       coords.Latitude,
		StationLon:       coords.Longitude,
		StationElevation: coords.Elevation,
		EventLat:         tpl.Family.Lat,
		EventLon:         tpl.Family.Lon,
		EventDepth:       tpl.Family.Depth,
		A:                tpl.PArrival.Sub(tpl.Stack.Trace.StartTime).Seconds(),
		KA:               "Ptheo",
		T0:               tpl.SArrival.Sub(tpl.Stack.Trace.StartTime).Seconds(),
		KT0:              "Stheo",
		KEVNM:            fmt.Sprintf("average%02d", tpl.Family.Number),
		ReferenceTime:    tpl.Stack.Trace.StartTime,
	}
	return sacio.Write(filename, sacio.File{Header: header, Data: tpl.Stack.Trace.Data})
}

// DistanceDeg and Distance report the template station's separation
// from the family centroid, per `build_template`'s `dist_deg`/`distance`
// fields.
func DistanceDeg(coords waveform.Coords, fam *families.Family) float64 {
	return geo.DistanceDeg(coords.Latitude, coords.Longitude, fam.Lat, fam.Lon)
}

func Distance(coords waveform.Coords, fam *families.Family) float64 {
	return geo.DistanceKM(coords.Latitude, coords.Longitude, fam.Lat, fam.Lon)
}
