package vectorindex

import (
	"fmt"
	"os"
	"sort"

	"github.com/coder/hnsw"
)

// HNSWIndex adapts github.com/coder/hnsw's in-memory graph to the Index
// contract. Slot ids are used directly as graph keys, so re-adding a
// slot id after MarkDelete is a plain insert — the graph does not
// distinguish "never seen" from "previously deleted".
type HNSWIndex struct {
	dim   int
	graph *hnsw.Graph[uint64]
}

// New creates an HNSW-backed vector index for vectors of the given
// dimension, using cosine distance (the only metric the spec requires).
func New(dim int) *HNSWIndex {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	return &HNSWIndex{dim: dim, graph: g}
}

func (idx *HNSWIndex) AddPoint(vector []float32, slotID uint64) error {
	if len(vector) != idx.dim {
		return fmt.Errorf("vectorindex: dimension mismatch: want %d, got %d", idx.dim, len(vector))
	}
	idx.graph.Add(hnsw.MakeNode(slotID, vector))
	return nil
}

func (idx *HNSWIndex) MarkDelete(slotID uint64) {
	idx.graph.Delete(slotID)
}

func (idx *HNSWIndex) Len() int {
	return idx.graph.Len()
}

// SearchKNN asks the graph for k nearest nodes and converts them into
// Neighbor values, computing cosine distance against the query directly
// since the graph's Search result carries keys and vectors but not the
// distance used to rank them.
func (idx *HNSWIndex) SearchKNN(query []float32, k int) ([]Neighbor, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("vectorindex: dimension mismatch: want %d, got %d", idx.dim, len(query))
	}
	if k <= 0 {
		return nil, nil
	}

	nodes := idx.graph.Search(query, k)
	neighbors := make([]Neighbor, 0, len(nodes))
	for _, n := range nodes {
		neighbors = append(neighbors, Neighbor{
			SlotID:   n.Key,
			Distance: hnsw.CosineDistance(query, n.Value),
		})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})
	return neighbors, nil
}

func (idx *HNSWIndex) WriteIndex(path string) error {
	f, err := os.Create(path) // #nosec G304 -- path is controlled by the calling namespace, not user input
	if err != nil {
		return fmt.Errorf("vectorindex: failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := hnsw.Export(idx.graph, f); err != nil {
		return fmt.Errorf("vectorindex: failed to export graph to %s: %w", path, err)
	}
	return nil
}

func (idx *HNSWIndex) ReadIndex(path string) error {
	f, err := os.Open(path) // #nosec G304 -- path is controlled by the calling namespace, not user input
	if err != nil {
		return fmt.Errorf("vectorindex: failed to open %s: %w", path, err)
	}
	defer f.Close()

	g, err := hnsw.Import[uint64](f)
	if err != nil {
		return fmt.Errorf("vectorindex: failed to import graph from %s: %w", path, err)
	}
	idx.graph = g
	return nil
}

var _ Index = (*HNSWIndex)(nil)
