package waveform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RemoteProvider is a client for a remote FDSN-style web service. Only
// the JSON station lookup is implemented, and Waveform always returns
// an error; waveform retrieval from a remote dataselect
// endpoint is network-format-specific (miniSEED) and out of scope here.
type RemoteProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewRemoteProvider returns a RemoteProvider pointed at baseURL, using
// http.DefaultClient.
func NewRemoteProvider(baseURL string) *RemoteProvider {
	return &RemoteProvider{BaseURL: baseURL, Client: http.DefaultClient}
}

type stationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Depth     float64 `json:"depth"`
}

// Coords resolves station coordinates via a "/station" JSON endpoint
// keyed by trace id and time.
func (p *RemoteProvider) Coords(ctx context.Context, id TraceID, at time.Time) (Coords, error) {
	q := url.Values{}
	q.Set("net", id.Network)
	q.Set("sta", id.Station)
	q.Set("loc", id.Location)
	q.Set("chan", id.Channel)
	q.Set("time", at.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/station?"+q.Encode(), nil)
	if err != nil {
		return Coords{}, fmt.Errorf("waveform: building station request: %w", err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return Coords{}, fmt.Errorf("waveform: station request for %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return Coords{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Coords{}, fmt.Errorf("waveform: station request for %s: status %d", id, resp.StatusCode)
	}

	var sr stationResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Coords{}, fmt.Errorf("waveform: decoding station response for %s: %w", id, err)
	}
	return Coords{Latitude: sr.Latitude, Longitude: sr.Longitude, Elevation: sr.Elevation, Depth: sr.Depth}, nil
}

// Waveform is unimplemented: remote dataselect responses are a binary
// seismic format this module does not parse.
func (p *RemoteProvider) Waveform(ctx context.Context, id TraceID, t0, t1 time.Time) (Trace, error) {
	return Trace{}, fmt.Errorf("waveform: RemoteProvider does not implement dataselect retrieval")
}
