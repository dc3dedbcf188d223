// Package catalog implements the event catalog model: immutable event
// records, FDSN text I/O, and CSV ingestion.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// fdsnTimeLayout is the origin-time format used on the wire, fixed at
// one-second resolution.
const fdsnTimeLayout = "2006-01-02T15:04:05"

// Event is a single cataloged earthquake. Fields are set once at
// construction time; callers must not mutate a shared Event in place.
type Event struct {
	EVID     string
	OrigTime time.Time
	Lat      *float64
	Lon      *float64
	Depth    *float64

	Author        string
	Catalog       string
	Contributor   string
	ContributorID string
	MagType       string
	Mag           *float64
	MagAuthor     string
	LocationName  string

	// TraceID binds an event to the station/channel used for similarity
	// on this event; empty until a pipeline stage assigns one.
	TraceID string
}

// Equal reports whether two events refer to the same evid and trace_id.
func (e Event) Equal(other Event) bool {
	return e.EVID == other.EVID && e.TraceID == other.TraceID
}

// Key identifies an Event for deduplication and map lookups.
func (e Event) Key() string {
	return e.EVID + "\x00" + e.TraceID
}

// Before orders events by origin time.
func (e Event) Before(other Event) bool {
	return e.OrigTime.Before(other.OrigTime)
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s %v %v %v %s %v",
		e.EVID, e.OrigTime.Format(fdsnTimeLayout), deref(e.Lon), deref(e.Lat), deref(e.Depth), e.MagType, deref(e.Mag))
}

func deref(f *float64) interface{} {
	if f == nil {
		return "None"
	}
	return *f
}

// FromFDSNText parses one FDSN text line into an Event.
func FromFDSNText(line string) (Event, error) {
	fields := strings.Split(strings.TrimSpace(line), "|")
	if len(fields) < 13 {
		return Event{}, fmt.Errorf("invalid FDSN text line: %q", line)
	}
	origTime, err := time.Parse(fdsnTimeLayout, fields[1])
	if err != nil {
		return Event{}, fmt.Errorf("invalid origin time in line %q: %w", line, err)
	}
	return Event{
		EVID:          fields[0],
		OrigTime:      origTime.UTC(),
		Lat:           parseFloatField(fields[2]),
		Lon:           parseFloatField(fields[3]),
		Depth:         parseFloatField(fields[4]),
		Author:        fields[5],
		Catalog:       fields[6],
		Contributor:   fields[7],
		ContributorID: fields[8],
		MagType:       fields[9],
		Mag:           parseFloatField(fields[10]),
		MagAuthor:     fields[11],
		LocationName:  fields[12],
	}, nil
}

func parseFloatField(s string) *float64 {
	if s == "" {
		return nil
	}
	var v float64
	if _, err := fmt.Sscanf(s, "%g", &v); err != nil {
		return nil
	}
	return &v
}

// FDSNText renders the event as one FDSN text line.
func (e Event) FDSNText() string {
	fields := []string{
		e.EVID,
		e.OrigTime.UTC().Format(fdsnTimeLayout),
		formatFloatField(e.Lat),
		formatFloatField(e.Lon),
		formatFloatField(e.Depth),
		e.Author,
		e.Catalog,
		e.Contributor,
		e.ContributorID,
		e.MagType,
		formatFloatField(e.Mag),
		e.MagAuthor,
		e.LocationName,
	}
	return strings.Join(fields, "|")
}

func formatFloatField(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%v", *f)
}
