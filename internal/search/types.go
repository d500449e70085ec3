// Package search implements the four query shapes the retrieval engine
// answers: pure vector kNN, pure BM25 full-text, weighted hybrid fusion,
// and Reciprocal Rank Fusion hybrid, plus MMR reranking. Every function
// here assumes the caller already holds the namespace's read lock; the
// package has no lock of its own (same discipline as
// index.InvertedIndex; internal/mutation, by contrast, takes the write
// lock itself).
package search

// Result is one ranked hit from a single-signal search (vector or BM25).
type Result struct {
	PublicID   string
	Similarity float64
	Metadata   map[string]interface{}
}

// HybridResult extends Result with the per-signal scores that produced
// the combined ranking.
type HybridResult struct {
	Result
	VectorScore   float64
	TextScore     float64
	CombinedScore float64
}

// Filter is a mapping of metadata keys to required exact-equal values.
// An empty or nil filter matches everything.
type Filter map[string]interface{}

// HybridOptions configures a weighted hybrid search.
type HybridOptions struct {
	VectorWeight float64
	TextWeight   float64
	K            int
	Filter       Filter
	Rerank       bool
}

const (
	// DefaultK is the default result-count limit when the caller omits k.
	DefaultK = 5

	// DefaultRRFK is the default rank-damping constant for RRF fusion.
	DefaultRRFK = 60

	// mmrLambda is the fixed diversity weight used by MMR reranking
	// (spec §4.5); it is not exposed as a tunable.
	mmrLambda = 0.7
)
