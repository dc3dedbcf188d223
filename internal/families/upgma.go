package families

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/requake-go/requake/internal/pairs"
	"github.com/requake-go/requake/internal/slip"
)

// BuildUPGMA groups events using average-linkage hierarchical
// clustering over a correlation-derived distance matrix, cut at
// distance 1-ccMin "UPGMA" (reference:
// https://en.wikipedia.org/wiki/UPGMA). No agglomerative-clustering
// package exists anywhere in the example pack, so the linkage itself is
// vendored; the initial
// condensed-to-square distance expansion uses gonum/mat.SymDense, a
// natural fit for that one step.
func BuildUPGMA(idx pairs.Index, ccMin float64, model slip.Model, params slip.Params) []*Family {
	evids := sortedKeys(idx.Events)
	n := len(evids)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return nil
	}

	minCorrelation := minCorrelationValue(idx.Correlations)
	distMat := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			cc, ok := lookupCorrelation(idx, evids[i], evids[j])
			if !ok {
				cc = minCorrelation
			}
			distMat.SetSym(i, j, 1-cc)
		}
	}

	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dist[i][j] = distMat.At(i, j)
		}
	}

	clusters := upgmaClusters(dist, 1-ccMin)

	var out []*Family
	for _, members := range clusters {
		if len(members) < 2 {
			continue
		}
		f := New(-1, model, params)
		for _, idxEv := range members {
			_ = f.Append(idx.Events[evids[idxEv]])
		}
		out = append(out, f)
	}
	return out
}

// upgmaClusters merges the two closest clusters (average-linkage
// distance) repeatedly, stopping once the closest remaining pair
// exceeds threshold, using the Lance-Williams update formula for
// average linkage: d(C, A∪B) = (|A|·d(C,A) + |B|·d(C,B)) / (|A|+|B|).
// Iteration order is fixed (lowest active index pair first), so the
// result is deterministic given sorted input evids.
func upgmaClusters(dist [][]float64, threshold float64) [][]int {
	n := len(dist)
	members := make([][]int, n)
	for i := range members {
		members[i] = []int{i}
	}
	active := make([]int, n)
	for i := range active {
		active[i] = i
	}

	for len(active) > 1 {
		bi, bj := -1, -1
		best := math.Inf(1)
		for ai := 0; ai < len(active); ai++ {
			for aj := ai + 1; aj < len(active); aj++ {
				i, j := active[ai], active[aj]
				if dist[i][j] < best {
					best = dist[i][j]
					bi, bj = i, j
				}
			}
		}
		if best > threshold {
			break
		}
		si, sj := len(members[bi]), len(members[bj])
		for _, k := range active {
			if k == bi || k == bj {
				continue
			}
			nd := (float64(si)*dist[bi][k] + float64(sj)*dist[bj][k]) / float64(si+sj)
			dist[bi][k] = nd
			dist[k][bi] = nd
		}
		members[bi] = append(members[bi], members[bj]...)
		newActive := active[:0:0]
		for _, k := range active {
			if k != bj {
				newActive = append(newActive, k)
			}
		}
		active = newActive
	}

	out := make([][]int, 0, len(active))
	for _, k := range active {
		out = append(out, members[k])
	}
	return out
}

func minCorrelationValue(correlations map[string]map[string]float64) float64 {
	min := math.Inf(1)
	for _, row := range correlations {
		for _, cc := range row {
			if cc < min {
				min = cc
			}
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return min
}

func lookupCorrelation(idx pairs.Index, a, b string) (float64, bool) {
	if row, ok := idx.Correlations[a]; ok {
		if cc, ok := row[b]; ok {
			return cc, true
		}
	}
	return 0, false
}
