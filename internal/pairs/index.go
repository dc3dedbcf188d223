package pairs

import "github.com/requake-go/requake/internal/catalog"

// Index is the result of folding a pair stream into per-event records
// plus a symmetric correlation map, mirroring
// `read_events_from_pairs_file`: the family builder consumes this
// instead of re-reading the catalog.
type Index struct {
	Events       map[string]catalog.Event
	Correlations map[string]map[string]float64
}

// BuildIndex folds a slice of pairs (as read by ReadFile) into an Index.
// The first occurrence of an evid fixes its Event record; correlations
// are stored symmetrically (evid1->evid2 and evid2->evid1).
func BuildIndex(ps []EventPair) Index {
	idx := Index{
		Events:       make(map[string]catalog.Event),
		Correlations: make(map[string]map[string]float64),
	}
	for _, p := range ps {
		ev1 := idx.Events[p.Event1.EVID]
		if ev1.EVID == "" {
			ev1 = p.Event1
			idx.Events[p.Event1.EVID] = ev1
		}
		ev2 := idx.Events[p.Event2.EVID]
		if ev2.EVID == "" {
			ev2 = p.Event2
			idx.Events[p.Event2.EVID] = ev2
		}
		if idx.Correlations[ev1.EVID] == nil {
			idx.Correlations[ev1.EVID] = make(map[string]float64)
		}
		if idx.Correlations[ev2.EVID] == nil {
			idx.Correlations[ev2.EVID] = make(map[string]float64)
		}
		idx.Correlations[ev1.EVID][ev2.EVID] = p.CCMax
		idx.Correlations[ev2.EVID][ev1.EVID] = p.CCMax
	}
	return idx
}
