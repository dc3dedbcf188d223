package families

import (
	"sort"

	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/pairs"
	"github.com/requake-go/requake/internal/slip"
)

// BuildFromSharedEvents groups events into families by transitive
// closure over pairs whose correlation meets ccMin
// "shared-event" clustering. Iteration is over sorted evids so the
// result is deterministic given a fixed Index" ordering guarantee).
func BuildFromSharedEvents(idx pairs.Index, ccMin float64, model slip.Model, params slip.Params) []*Family {
	evids := sortedKeys(idx.Events)
	var families []*Family

	for _, evid := range evids {
		candidate := New(-1, model, params)
		_ = candidate.Append(idx.Events[evid])

		for _, other := range sortedCorrelationKeys(idx.Correlations[evid]) {
			if idx.Correlations[evid][other] < ccMin {
				continue
			}
			_ = candidate.Append(idx.Events[other])
		}
		if len(candidate.Events) == 1 {
			continue
		}

		merged := false
		for _, existing := range families {
			if sharesEvent(existing, candidate) {
				for _, ev := range candidate.Events {
					_ = existing.Append(ev)
				}
				merged = true
				break
			}
		}
		if !merged {
			families = append(families, candidate)
		}
	}
	return families
}

func sharesEvent(a, b *Family) bool {
	seen := make(map[string]bool, len(a.Events))
	for _, ev := range a.Events {
		seen[ev.Key()] = true
	}
	for _, ev := range b.Events {
		if seen[ev.Key()] {
			return true
		}
	}
	return false
}

func sortedKeys(events map[string]catalog.Event) []string {
	keys := make([]string, 0, len(events))
	for k := range events {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCorrelationKeys(correlations map[string]float64) []string {
	keys := make([]string, 0, len(correlations))
	for k := range correlations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
