// Package vectorindex defines the narrow Vector-Index Adapter contract
// the retrieval engine depends on, and a concrete implementation backed
// by an HNSW graph. The engine never imports an HNSW library directly;
// swapping Index for another implementation does not touch the engine.
package vectorindex

// Neighbor is one result of a k-nearest-neighbor search: the slot id the
// point was added under, and its cosine distance from the query
// (0 = identical direction, 2 = opposite direction).
type Neighbor struct {
	SlotID   uint64
	Distance float32
}

// Index is the contract the retrieval engine requires of a vector
// backend (spec §6). Implementations need not be safe for concurrent
// use on their own — the engine calls through its own per-namespace lock.
type Index interface {
	// AddPoint inserts or replaces the vector stored at slotID. Adding at
	// a slot id that was previously removed via MarkDelete must succeed
	// (the mutation engine relies on this for Update).
	AddPoint(vector []float32, slotID uint64) error

	// MarkDelete removes slotID from future search results. A no-op if
	// the slot was never added or already removed.
	MarkDelete(slotID uint64)

	// SearchKNN returns up to k neighbors of query, nearest first.
	SearchKNN(query []float32, k int) ([]Neighbor, error)

	// Len reports the number of live points in the index.
	Len() int

	// WriteIndex serializes the index to path.
	WriteIndex(path string) error

	// ReadIndex replaces the index's contents with the snapshot at path.
	ReadIndex(path string) error
}
