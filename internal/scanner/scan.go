package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/requake-go/requake/internal/rqerr"
	"github.com/requake-go/requake/internal/signal"
	"github.com/requake-go/requake/internal/waveform"
)

// Config bundles the scan tunables from this configuration table.
type Config struct {
	StartTime     time.Time
	EndTime       time.Time
	TimeChunk     time.Duration
	ChunkOverlap  time.Duration
	PreP          time.Duration
	TraceLength   time.Duration
	FreqMin       float64
	FreqMax       float64
	FilterOrder   int
	AllowNegative bool
	MinCCMadRatio float64
	OutDir        string
}

// Scanner drives a continuous-waveform scan against a fixed set of
// templates.
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

// preparedTemplate bundles a template with its precomputed bandpass data
// and open detection catalog, so the chunk loop only has to fetch and
// cross-correlate.
type preparedTemplate struct {
	tpl    Template
	id     waveform.TraceID
	data   []float64
	writer *catalogWriter
}

// Scan runs every template over [Config.StartTime, Config.EndTime] in
// Config.TimeChunk-sized, Config.ChunkOverlap-extended windows. Chunks
// are visited in ascending order, and within a chunk every template
// scans in the order given, sharing one fetched trace per trace id
// across all templates that reference it that chunk: a cache keyed by
// trace id is built fresh for each chunk and discarded once every
// template has used it. This mirrors the original's single `while time
// <= end` loop, which nests templates inside the chunk loop and clears
// its trace cache once per iteration.
func (s *Scanner) Scan(ctx context.Context, templates []Template) (int, error) {
	prepared := make([]*preparedTemplate, 0, len(templates))
	for _, tpl := range templates {
		id, err := waveform.ParseTraceID(tpl.TraceID)
		if err != nil {
			return 0, fmt.Errorf("scanner: invalid template trace id %q: %w", tpl.TraceID, err)
		}
		data, err := process(tpl.Data(), tpl.Dt(), s.Config.FreqMin, s.Config.FreqMax, s.Config.FilterOrder)
		if err != nil {
			return 0, fmt.Errorf("scanner: processing template %s: %w", tpl.TraceID, err)
		}
		w, err := newCatalogWriter(s.Config.OutDir, tpl)
		if err != nil {
			return 0, fmt.Errorf("scanner: opening catalog for template %s: %w", tpl.TraceID, err)
		}
		prepared = append(prepared, &preparedTemplate{tpl: tpl, id: id, data: data, writer: w})
	}
	defer func() {
		for _, p := range prepared {
			p.writer.Close()
		}
	}()

	total := 0
	for t := s.Config.StartTime; !t.After(s.Config.EndTime); t = t.Add(s.Config.TimeChunk) {
		t0 := t
		t1 := t.Add(s.Config.TimeChunk).Add(s.Config.ChunkOverlap)
		chunkCache := make(map[string]waveform.Trace)

		for _, p := range prepared {
			tr, cached := chunkCache[p.tpl.TraceID]
			if !cached {
				var err error
				tr, err = s.Provider.Waveform(ctx, p.id, t0, t1)
				if err != nil {
					s.logf("scanner: no data for %s: %s - %s: %v", p.tpl.TraceID, t0, t1, err)
					continue
				}
				chunkCache[p.tpl.TraceID] = tr
			}
			if tr.Dt != p.tpl.Dt() {
				return total, rqerr.SampleRateMismatch(fmt.Sprintf(
					"template %s: chunk sampling interval %v does not match template %v", p.tpl.TraceID, tr.Dt, p.tpl.Dt()))
			}

			n, err := s.scanChunk(t0, t1, tr, p)
			if err != nil {
				return total, fmt.Errorf("scanner: writing detection: %w", err)
			}
			total += n
		}
	}
	return total, nil
}

// scanChunk cross-correlates one fetched chunk against one template and
// writes a detection row if the trigger fires.
func (s *Scanner) scanChunk(t0, t1 time.Time, tr waveform.Trace, p *preparedTemplate) (int, error) {
	chunkData, err := process(tr.Data, tr.Dt, s.Config.FreqMin, s.Config.FreqMax, s.Config.FilterOrder)
	if err != nil {
		s.logf("scanner: processing chunk for %s: %s - %s: %v", p.tpl.TraceID, t0, t1, err)
		return 0, nil
	}

	maxLag := int(s.Config.TimeChunk.Seconds() / tr.Dt)
	cc := signal.CrossCorrelate(chunkData, p.data, tr.Dt, maxLag, s.Config.AllowNegative)
	ccMad := signal.MAD(cc.Series)
	if ccMad == 0 {
		return 0, nil
	}
	ccPeak := cc.CCMax / ccMad
	if ccPeak <= s.Config.MinCCMadRatio {
		return 0, nil
	}

	ccMax, pArrival, ok := s.refineDetection(tr, p.tpl, cc.LagSec)
	if !ok {
		return 0, nil
	}
	ev := buildEvent(p.tpl, p.tpl.TraceID, pArrival)
	if err := p.writer.writeDetection(detectionLine(ev, ccMax)); err != nil {
		return 0, err
	}
	return 1, nil
}

// refineDetection recomputes a tighter correlation around the trigger:
// the raw chunk correlation's lag is referenced to the zero-padded
// correlation series, so a half-length-difference correction is added
// before mapping it to an absolute P arrival time; the template is then
// re-correlated against a trace window trimmed exactly to the predicted
// event window.
func (s *Scanner) refineDetection(tr waveform.Trace, tpl Template, lagSec float64) (ccMax float64, pArrival time.Time, ok bool) {
	dLen := 0.5 * float64(len(tr.Data)-len(tpl.Data())) * tr.Dt
	lagSec += dLen
	pArrivalOffset := lagSec + tpl.PArrivalOffsetSec()
	pArrivalAbsolute := tr.StartTime.Add(time.Duration(pArrivalOffset * float64(time.Second)))

	t0 := pArrivalAbsolute.Add(-s.Config.PreP)
	t1 := t0.Add(s.Config.TraceLength)
	trimmed := trim(tr, t0, t1)
	if len(trimmed) == 0 {
		return 0, time.Time{}, false
	}

	trimmedProcessed, err := process(trimmed, tr.Dt, s.Config.FreqMin, s.Config.FreqMax, s.Config.FilterOrder)
	if err != nil {
		return 0, time.Time{}, false
	}
	templateData, err := process(tpl.Data(), tpl.Dt(), s.Config.FreqMin, s.Config.FreqMax, s.Config.FilterOrder)
	if err != nil {
		return 0, time.Time{}, false
	}
	maxLag := int(s.Config.TimeChunk.Seconds() / tr.Dt)
	cc := signal.CrossCorrelate(trimmedProcessed, templateData, tr.Dt, maxLag, s.Config.AllowNegative)
	return cc.CCMax, pArrivalAbsolute, true
}

// trim returns the subset of tr.Data covering [t0, t1), zero-padding
// where the requested window falls outside the trace.
func trim(tr waveform.Trace, t0, t1 time.Time) []float64 {
	n := int(t1.Sub(t0).Seconds() / tr.Dt)
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	offset := int(t0.Sub(tr.StartTime).Seconds() / tr.Dt)
	for i := 0; i < n; i++ {
		j := offset + i
		if j < 0 || j >= len(tr.Data) {
			continue
		}
		out[i] = tr.Data[j]
	}
	return out
}

func process(data []float64, dt, freqMin, freqMax float64, order int) ([]float64, error) {
	demeaned := signal.Demean(data)
	tapered := signal.Taper(demeaned, 0.05)
	if freqMin <= 0 && freqMax <= 0 {
		return tapered, nil
	}
	return signal.Bandpass(tapered, dt, freqMin, freqMax, order)
}
