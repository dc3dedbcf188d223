// Package arrival predicts P and S phase travel times from a fixed 1-D
// earth model (ak135). obspy.taup ships a full ray-tracer
// over the ak135 velocity profile; no pure-Go equivalent exists, so this
// package instead tabulates travel times on a depth/distance grid and
// bilinearly interpolates, which is how tau-p-style travel-time curves
// are consumed in practice once computed.
package arrival

import (
	"fmt"
	"math"

	"github.com/requake-go/requake/internal/geo"
)

// kmPerDegree approximates the arc length of one degree of great-circle
// distance on the ak135 reference sphere.
const kmPerDegree = 111.195

// depthNodesKM and distNodesDeg define the interpolation grid. Travel
// times outside this range are clamped to the nearest edge.
var (
	depthNodesKM = []float64{0, 35, 100, 200, 300, 500, 700}
	distNodesDeg = []float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150, 160, 170, 180}
	pTravelTimes [][]float64 // [depthIdx][distIdx], seconds
	sTravelTimes [][]float64
)

func init() {
	pTravelTimes = buildGrid(8.1, 3.5)
	sTravelTimes = buildGrid(4.5, 2.0)
}

// buildGrid fills a depth x distance travel-time grid using a slant-path
// approximation: travel time is straight-line source-to-receiver
// distance (surface arc combined with depth via Pythagoras) divided by
// an average velocity that grows with distance, reflecting deeper,
// faster raypaths at larger offsets.
func buildGrid(baseVelKmS, velGrowthKmS float64) [][]float64 {
	grid := make([][]float64, len(depthNodesKM))
	for di, depth := range depthNodesKM {
		row := make([]float64, len(distNodesDeg))
		for xi, dist := range distNodesDeg {
			arcKM := dist * kmPerDegree
			slantKM := math.Hypot(arcKM, depth)
			vAvg := baseVelKmS + velGrowthKmS*(dist/180.0)
			row[xi] = slantKM / vAvg
		}
		grid[di] = row
	}
	return grid
}

// Phase is a predicted seismic phase arrival.
type Phase struct {
	Name          string
	TravelTimeSec float64
}

// Arrivals bundles the P and S predictions and the source-receiver
// distance used to compute them.
type Arrivals struct {
	P           Phase
	S           Phase
	DistanceKM  float64
	DistanceDeg float64
}

// Get predicts P and S arrivals for an event at (evLat, evLon, evDepthKM)
// observed at (stationLat, stationLon). Negative depths are clipped to
// 0. Returns an error only for non-finite inputs; the
// model itself is total over the valid coordinate range.
func Get(stationLat, stationLon, evLat, evLon, evDepthKM float64) (Arrivals, error) {
	for _, v := range []float64{stationLat, stationLon, evLat, evLon, evDepthKM} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Arrivals{}, fmt.Errorf("arrival: non-finite input coordinate")
		}
	}
	if evDepthKM < 0 {
		evDepthKM = 0
	}

	distKM := geo.DistanceKM(stationLat, stationLon, evLat, evLon)
	distDeg := geo.DistanceDeg(stationLat, stationLon, evLat, evLon)

	return Arrivals{
		P:           Phase{Name: "P", TravelTimeSec: interpolate(pTravelTimes, evDepthKM, distDeg)},
		S:           Phase{Name: "S", TravelTimeSec: interpolate(sTravelTimes, evDepthKM, distDeg)},
		DistanceKM:  distKM,
		DistanceDeg: distDeg,
	}, nil
}

// interpolate performs bilinear interpolation of table over the
// (depth, distance) grid, clamping out-of-range inputs to the nearest
// edge node.
func interpolate(table [][]float64, depthKM, distDeg float64) float64 {
	di0, di1, dFrac := gridBracket(depthNodesKM, depthKM)
	xi0, xi1, xFrac := gridBracket(distNodesDeg, distDeg)

	v00 := table[di0][xi0]
	v01 := table[di0][xi1]
	v10 := table[di1][xi0]
	v11 := table[di1][xi1]

	v0 := v00 + (v01-v00)*xFrac
	v1 := v10 + (v11-v10)*xFrac
	return v0 + (v1-v0)*dFrac
}

// gridBracket finds the pair of indices in nodes bracketing value,
// clamped to the valid range, and the fractional position between them.
func gridBracket(nodes []float64, value float64) (lo, hi int, frac float64) {
	if value <= nodes[0] {
		return 0, 0, 0
	}
	last := len(nodes) - 1
	if value >= nodes[last] {
		return last, last, 0
	}
	for i := 0; i < last; i++ {
		if value >= nodes[i] && value <= nodes[i+1] {
			span := nodes[i+1] - nodes[i]
			if span == 0 {
				return i, i + 1, 0
			}
			return i, i + 1, (value - nodes[i]) / span
		}
	}
	return last, last, 0
}
