// Package templates builds stacked waveform templates for event
// families: fetching each member's windowed waveform,
// aligning them by cross-correlation, stacking into an average trace,
// and writing the result as a SAC file.
package templates

import (
	"math"
	"time"

	"github.com/requake-go/requake/internal/fetch"
	"github.com/requake-go/requake/internal/signal"
	"github.com/requake-go/requake/internal/waveform"
)

// epoch is the fixed reference time templates use in place of a real
// origin time, per `_stack_traces`/`build_template`.
var epoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// member is one family event's fetched, demeaned waveform plus the
// bookkeeping alignment mutates in place (arrival times shift with the
// trace as it's realigned).
type member struct {
	Result   fetch.Result
	PArrival time.Time
	SArrival time.Time
	CCMean   float64
}

func newMembers(results []fetch.Result) []member {
	out := make([]member, len(results))
	for i, r := range results {
		out[i] = member{Result: r, PArrival: r.Stats.PArrival, SArrival: r.Stats.SArrival}
	}
	return out
}

// alignPair shifts m2's data to maximize its cross-correlation against
// m1, shifting m2's P/S arrival markers by the same lag, per
// `align_pair`.
func alignPair(m1, m2 *member, maxLag int, freqMin, freqMax float64, filterOrder int, allowNegative bool) (float64, error) {
	data1, err := bandpass(m1.Result.Trace.Data, m1.Result.Trace.Dt, freqMin, freqMax, filterOrder)
	if err != nil {
		return 0, err
	}
	data2, err := bandpass(m2.Result.Trace.Data, m2.Result.Trace.Dt, freqMin, freqMax, filterOrder)
	if err != nil {
		return 0, err
	}
	cc := signal.CrossCorrelate(data1, data2, m1.Result.Trace.Dt, maxLag, allowNegative)

	lag := cc.Lag
	data := m2.Result.Trace.Data
	shifted := make([]float64, len(data))
	switch {
	case lag > 0:
		// trace #2 is delayed
		for i := lag; i < len(data); i++ {
			shifted[i] = data[i-lag]
		}
	case lag < 0:
		// trace #2 is advanced
		for i := 0; i < len(data)+lag; i++ {
			shifted[i] = data[i-lag]
		}
	default:
		copy(shifted, data)
	}
	m2.Result.Trace.Data = shifted
	lagDur := time.Duration(cc.LagSec * float64(time.Second))
	m2.PArrival = m2.PArrival.Add(lagDur)
	m2.SArrival = m2.SArrival.Add(lagDur)
	return cc.CCMax, nil
}

func bandpass(data []float64, dt, freqMin, freqMax float64, order int) ([]float64, error) {
	if freqMin <= 0 && freqMax <= 0 {
		return data, nil
	}
	return signal.Bandpass(data, dt, freqMin, freqMax, order)
}

// alignTraces aligns every member to the first, then to the running
// stack twice more, per `align_traces`. The final stack's mean
// correlation against each aligned member is recorded on the member.
func alignTraces(members []member, maxLag int, freqMin, freqMax float64, filterOrder int, allowNegative bool, normalize bool) error {
	if len(members) == 0 {
		return nil
	}
	for i := 1; i < len(members); i++ {
		if _, err := alignPair(&members[0], &members[i], maxLag, freqMin, freqMax, filterOrder, allowNegative); err != nil {
			return err
		}
	}
	for pass := 0; pass < 2; pass++ {
		stack := stackTraces(members, normalize)
		for i := range members {
			ccMax, err := alignPair(&stack, &members[i], maxLag, freqMin, freqMax, filterOrder, allowNegative)
			if err != nil {
				return err
			}
			members[i].CCMean = ccMax
		}
	}
	return nil
}

// stackTraces demeans and (optionally) amplitude-normalizes every
// member, pads or truncates to a common length, and averages them into
// one trace referenced to the fixed epoch, per `_stack_traces`.
func stackTraces(members []member, normalize bool) member {
	refLen := len(members[0].Result.Trace.Data)
	dt := members[0].Result.Trace.Dt

	stack := make([]float64, refLen)
	var pSum, sSum float64
	for _, m := range members {
		data := signal.Demean(m.Result.Trace.Data)
		if normalize {
			if peak := maxAbs(data); peak > 0 {
				for i := range data {
					data[i] /= peak
				}
			}
		}
		for i := 0; i < refLen; i++ {
			if i < len(data) {
				stack[i] += data[i]
			}
		}
		pSum += m.PArrival.Sub(m.Result.Trace.StartTime).Seconds()
		sSum += m.SArrival.Sub(m.Result.Trace.StartTime).Seconds()
	}
	n := float64(len(members))
	for i := range stack {
		stack[i] /= n
	}

	return member{
		Result: fetch.Result{
			Trace: waveformTrace(members[0].Result.Trace.ID, dt, epoch, stack),
		},
		PArrival: epoch.Add(time.Duration((pSum / n) * float64(time.Second))),
		SArrival: epoch.Add(time.Duration((sSum / n) * float64(time.Second))),
	}
}

func waveformTrace(id waveform.TraceID, dt float64, start time.Time, data []float64) waveform.Trace {
	return waveform.Trace{ID: id, Dt: dt, StartTime: start, Data: data}
}

func maxAbs(data []float64) float64 {
	max := 0.0
	for _, v := range data {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	return max
}
