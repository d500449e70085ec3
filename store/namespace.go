// Package store holds the per-namespace data model: the slot allocator,
// the public-id/slot bimap, the live entries, and the lock that guards
// all of it. Namespaces never share state (spec §3).
package store

import (
	"sync"

	"github.com/brevity-labs/hyve/index"
	"github.com/brevity-labs/hyve/model"
	"github.com/brevity-labs/hyve/vectorindex"
)

// NamespaceStore is the independent universe of documents, vector index,
// inverted index, slot space, and indexed-field configuration for one
// namespace name.
type NamespaceStore struct {
	// Mu guards every field below. Readers take RLock; writers take
	// Lock. Exported, as the teacher's store.DocumentStore.Mu and
	// index.InvertedIndex.Mu are, since callers in other packages
	// (mutation, search, persistence, compaction) all operate under it.
	Mu sync.RWMutex

	Name        string
	Dim         int
	MaxElements int

	Vector   vectorindex.Index
	Inverted *index.InvertedIndex

	idToSlot    map[string]uint64
	slotToEntry map[uint64]*model.Entry

	nextSlot uint64
	freeList []uint64

	indexedFields []string
}

// New creates an empty NamespaceStore backed by an HNSW vector index.
func New(name string, dim, maxElements int) *NamespaceStore {
	return &NamespaceStore{
		Name:        name,
		Dim:         dim,
		MaxElements: maxElements,
		Vector:      vectorindex.New(dim),
		Inverted:    index.New(),
		idToSlot:    make(map[string]uint64),
		slotToEntry: make(map[uint64]*model.Entry),
	}
}

// AllocateSlot pops the free list if non-empty, otherwise returns the
// next never-used slot number. Fails with ok=false if the free list is
// empty and next_slot has reached max_elements. Callers must hold Mu for
// writing.
func (ns *NamespaceStore) AllocateSlot() (slot uint64, ok bool) {
	if n := len(ns.freeList); n > 0 {
		slot = ns.freeList[n-1]
		ns.freeList = ns.freeList[:n-1]
		return slot, true
	}
	if ns.nextSlot >= uint64(ns.MaxElements) {
		return 0, false
	}
	slot = ns.nextSlot
	ns.nextSlot++
	return slot, true
}

// ReleaseSlot pushes slot onto the free list. Callers must hold Mu for
// writing.
func (ns *NamespaceStore) ReleaseSlot(slot uint64) {
	ns.freeList = append(ns.freeList, slot)
}

// Slot returns the slot bound to a public id, if live.
func (ns *NamespaceStore) Slot(publicID string) (uint64, bool) {
	slot, ok := ns.idToSlot[publicID]
	return slot, ok
}

// Entry returns the entry stored at a slot, if live.
func (ns *NamespaceStore) Entry(slot uint64) (*model.Entry, bool) {
	e, ok := ns.slotToEntry[slot]
	return e, ok
}

// Bind records the public id <-> slot <-> entry association for a live
// document. Callers must hold Mu for writing.
func (ns *NamespaceStore) Bind(publicID string, slot uint64, entry *model.Entry) {
	ns.idToSlot[publicID] = slot
	ns.slotToEntry[slot] = entry
}

// Unbind removes the public id <-> slot <-> entry association. Callers
// must hold Mu for writing.
func (ns *NamespaceStore) Unbind(publicID string, slot uint64) {
	delete(ns.idToSlot, publicID)
	delete(ns.slotToEntry, slot)
}

// LiveCount returns the number of live documents.
func (ns *NamespaceStore) LiveCount() int { return len(ns.slotToEntry) }

// NextSlot returns the slot allocator's high-water mark.
func (ns *NamespaceStore) NextSlot() uint64 { return ns.nextSlot }

// FreeListLen returns the number of reclaimed slots available for reuse.
func (ns *NamespaceStore) FreeListLen() int { return len(ns.freeList) }

// FreeList returns a copy of the free list, used by persistence.
func (ns *NamespaceStore) FreeList() []uint64 {
	out := make([]uint64, len(ns.freeList))
	copy(out, ns.freeList)
	return out
}

// IndexedFields returns the ordered list of metadata keys participating
// in the inverted index.
func (ns *NamespaceStore) IndexedFields() []string {
	out := make([]string, len(ns.indexedFields))
	copy(out, ns.indexedFields)
	return out
}

// SetIndexedFields replaces the indexed-field list. Per spec, this does
// not retroactively reindex existing documents — only documents
// inserted, updated, or compacted after this call are indexed against
// the new field list. Callers must hold Mu for writing.
func (ns *NamespaceStore) SetIndexedFields(fields []string) {
	ns.indexedFields = append([]string(nil), fields...)
}

// ForEachLive calls fn for every live (publicID, slot, entry) triple.
// Iteration order is not specified (spec §4.7 step 2).
func (ns *NamespaceStore) ForEachLive(fn func(publicID string, slot uint64, entry *model.Entry)) {
	for slot, entry := range ns.slotToEntry {
		fn(entry.PublicID, slot, entry)
	}
}

// Replace atomically swaps in a freshly built vector index, slot→entry
// map, id→slot map, inverted index, free list, and next-slot counter.
// Used only by compaction and load. Callers must hold Mu for writing.
func (ns *NamespaceStore) Replace(vector vectorindex.Index, inverted *index.InvertedIndex, idToSlot map[string]uint64, slotToEntry map[uint64]*model.Entry, freeList []uint64, nextSlot uint64) {
	ns.Vector = vector
	ns.Inverted = inverted
	ns.idToSlot = idToSlot
	ns.slotToEntry = slotToEntry
	ns.freeList = freeList
	ns.nextSlot = nextSlot
}

// Stats is a read-only snapshot of a namespace's invariants, useful for
// tests and operational introspection. Not part of the original spec's
// operation table; see SPEC_FULL.md §5.
type Stats struct {
	LiveCount     int
	NextSlot      uint64
	FreeListLen   int
	TotalDocs     int
	AvgDocLength  float64
	IndexedFields []string
}

// Snapshot returns a Stats value. Callers must hold at least Mu.RLock().
func (ns *NamespaceStore) Snapshot() Stats {
	return Stats{
		LiveCount:     ns.LiveCount(),
		NextSlot:      ns.nextSlot,
		FreeListLen:   len(ns.freeList),
		TotalDocs:     ns.Inverted.TotalDocs(),
		AvgDocLength:  ns.Inverted.AvgDocLength(),
		IndexedFields: ns.IndexedFields(),
	}
}
