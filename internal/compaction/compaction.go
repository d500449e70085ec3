// Package compaction rebuilds a namespace with contiguous slot
// numbering, reclaiming the free list the underlying vector index
// accumulates as tombstones across deletes and updates (spec §4.7).
package compaction

import (
	"github.com/brevity-labs/hyve/index"
	"github.com/brevity-labs/hyve/model"
	"github.com/brevity-labs/hyve/store"
	"github.com/brevity-labs/hyve/vectorindex"
)

// Compact rebuilds ns under its own write lock: a fresh vector index,
// contiguous slot numbers starting at 0, and a freshly computed
// inverted index built from the namespace's current indexed-field
// list. Iteration order over live documents is not observable (spec
// §4.7 step 2), so map iteration order is fine here.
func Compact(ns *store.NamespaceStore) {
	ns.Mu.Lock()
	defer ns.Mu.Unlock()

	newVector := vectorindex.New(ns.Dim)
	newInverted := index.New()
	idToSlot := make(map[string]uint64)
	slotToEntry := make(map[uint64]*model.Entry)

	var nextSlot uint64
	ns.ForEachLive(func(publicID string, _ uint64, entry *model.Entry) {
		slot := nextSlot
		nextSlot++

		idToSlot[publicID] = slot
		slotToEntry[slot] = entry
		newInverted.Index(slot, entry.Metadata, ns.IndexedFields())
		// In-memory reinsertion after validated dimensions cannot fail,
		// same reasoning as Insert's atomicity note (spec §4.4).
		_ = newVector.AddPoint(entry.Vector, slot)
	})

	ns.Replace(newVector, newInverted, idToSlot, slotToEntry, nil, nextSlot)
}
