package search

import (
	"github.com/brevity-labs/hyve/store"
)

// Vector runs a pure k-nearest-neighbor search over ns's vector index
// (spec §4.5). It requests min(2k, live_count) neighbors from the
// adapter to leave slack for entries the filter drops, converts cosine
// distance to similarity, and returns the first k survivors in the
// order the index returned them.
func Vector(ns *store.NamespaceStore, query []float32, k int, filter Filter) ([]Result, error) {
	if k <= 0 {
		k = DefaultK
	}
	live := ns.LiveCount()
	if live == 0 {
		return nil, nil
	}

	ask := 2 * k
	if ask > live {
		ask = live
	}

	neighbors, err := ns.Vector.SearchKNN(query, ask)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, k)
	for _, n := range neighbors {
		entry, ok := ns.Entry(n.SlotID)
		if !ok {
			continue
		}
		if !entry.MatchesFilter(filter) {
			continue
		}
		results = append(results, Result{
			PublicID:   entry.PublicID,
			Similarity: 1 - float64(n.Distance),
			Metadata:   entry.Metadata,
		})
		if len(results) == k {
			break
		}
	}
	return results, nil
}
