// Package waveform defines the waveform provider capability:
// resolving station coordinates and fetching evenly sampled traces by
// trace id, plus the concrete providers that fulfill it.
package waveform

import (
	"fmt"
	"strings"
)

// TraceID is the four-field channel identifier network.station.location.channel.
type TraceID struct {
	Network  string
	Station  string
	Location string
	Channel  string
}

// ParseTraceID splits a dotted trace id string into its four fields. An
// empty network round-trips through the literal "@@".
func ParseTraceID(s string) (TraceID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return TraceID{}, fmt.Errorf("waveform: invalid trace id %q: want 4 dot-separated fields", s)
	}
	net := parts[0]
	if net == "@@" {
		net = ""
	}
	return TraceID{Network: net, Station: parts[1], Location: parts[2], Channel: parts[3]}, nil
}

// String renders the trace id in canonical dotted form, substituting
// "@@" for an empty network and "_" for any dot embedded in a field, so
// the result is safe to use as a filename component.
func (t TraceID) String() string {
	net := t.Network
	if net == "" {
		net = "@@"
	}
	fields := []string{net, t.Station, t.Location, t.Channel}
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, ".", "_")
	}
	return strings.Join(fields, ".")
}

// Key is the map/cache key form of the trace id; identical to String.
func (t TraceID) Key() string { return t.String() }
