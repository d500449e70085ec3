package search

import (
	"context"
	"sort"

	hyveerrors "github.com/brevity-labs/hyve/internal/errors"
	"github.com/brevity-labs/hyve/store"
	"golang.org/x/sync/errgroup"
)

const epsilon = 1.0

// Weighted runs vector search and BM25 search concurrently (via
// errgroup, mirroring the fan-out pattern the corpus uses for
// independent I/O-bound work), min-max normalizes each list, and
// combines them by vector_weight*n_vec + text_weight*n_txt (spec
// §4.5). vector_weight and text_weight must sum to exactly 1.0.
func Weighted(ctx context.Context, ns *store.NamespaceStore, queryVector []float32, queryText string, opts HybridOptions) ([]HybridResult, error) {
	if opts.VectorWeight+opts.TextWeight != 1.0 {
		return nil, hyveerrors.NewBadWeightsError(opts.VectorWeight, opts.TextWeight)
	}
	k := opts.K
	if k <= 0 {
		k = DefaultK
	}

	kPrime := fanoutLimit(ns, k)

	var vecResults, textResults []Result
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vecResults, err = Vector(ns, queryVector, kPrime, opts.Filter)
		return err
	})
	g.Go(func() error {
		textResults = BM25(ns, queryText, kPrime, opts.Filter)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vecNorm := minMaxNormalize(vecResults)
	textNorm := minMaxNormalize(textResults)

	metadata := mergeByID(vecResults, textResults)
	hybrid := make([]HybridResult, 0, len(metadata))
	for id, md := range metadata {
		vScore := vecNorm[id]
		tScore := textNorm[id]
		hybrid = append(hybrid, HybridResult{
			Result:        Result{PublicID: id, Metadata: md},
			VectorScore:   vScore,
			TextScore:     tScore,
			CombinedScore: opts.VectorWeight*vScore + opts.TextWeight*tScore,
		})
	}

	sort.SliceStable(hybrid, func(i, j int) bool {
		return hybrid[i].CombinedScore > hybrid[j].CombinedScore
	})
	for i := range hybrid {
		hybrid[i].Similarity = hybrid[i].CombinedScore
	}

	if opts.Rerank {
		hybrid = mmr(ns, hybrid, queryVector)
	}
	if len(hybrid) > k {
		hybrid = hybrid[:k]
	}
	return hybrid, nil
}

// RRF runs vector and BM25 search concurrently at the same expanded
// limit and fuses them with Reciprocal Rank Fusion: for each public id,
// sum 1/(rrfK+rank) across the lists it appears in (spec §4.5).
func RRF(ctx context.Context, ns *store.NamespaceStore, queryVector []float32, queryText string, k, rrfK int, filter Filter) ([]HybridResult, error) {
	if k <= 0 {
		k = DefaultK
	}
	if rrfK <= 0 {
		rrfK = DefaultRRFK
	}
	kPrime := fanoutLimit(ns, k)

	var vecResults, textResults []Result
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vecResults, err = Vector(ns, queryVector, kPrime, filter)
		return err
	})
	g.Go(func() error {
		textResults = BM25(ns, queryText, kPrime, filter)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rrfScore := make(map[string]float64)
	metadata := make(map[string]map[string]interface{})
	for rank, r := range vecResults {
		rrfScore[r.PublicID] += 1.0 / float64(rrfK+rank+1)
		metadata[r.PublicID] = r.Metadata
	}
	for rank, r := range textResults {
		rrfScore[r.PublicID] += 1.0 / float64(rrfK+rank+1)
		metadata[r.PublicID] = r.Metadata
	}

	hybrid := make([]HybridResult, 0, len(rrfScore))
	for id, score := range rrfScore {
		hybrid = append(hybrid, HybridResult{
			Result:        Result{PublicID: id, Similarity: score, Metadata: metadata[id]},
			CombinedScore: score,
		})
	}
	sort.SliceStable(hybrid, func(i, j int) bool {
		return hybrid[i].CombinedScore > hybrid[j].CombinedScore
	})
	if len(hybrid) > k {
		hybrid = hybrid[:k]
	}
	return hybrid, nil
}

// fanoutLimit computes min(3k, live_count), the expanded per-signal
// limit both hybrid modes request (spec §4.5).
func fanoutLimit(ns *store.NamespaceStore, k int) int {
	live := ns.LiveCount()
	limit := 3 * k
	if limit > live {
		limit = live
	}
	return limit
}

// mergeByID returns, for every public id appearing in either list, its
// metadata (identical regardless of which list it came from).
func mergeByID(a, b []Result) map[string]map[string]interface{} {
	merged := make(map[string]map[string]interface{})
	for _, r := range a {
		merged[r.PublicID] = r.Metadata
	}
	for _, r := range b {
		merged[r.PublicID] = r.Metadata
	}
	return merged
}

// minMaxNormalize maps each result's raw similarity into [0, 1] by
// min-max scaling, using 1 as the divisor when max == min to avoid
// dividing by zero (spec §4.5 step 2).
func minMaxNormalize(results []Result) map[string]float64 {
	out := make(map[string]float64, len(results))
	if len(results) == 0 {
		return out
	}
	min, max := results[0].Similarity, results[0].Similarity
	for _, r := range results {
		if r.Similarity < min {
			min = r.Similarity
		}
		if r.Similarity > max {
			max = r.Similarity
		}
	}
	denom := max - min
	if denom <= 0 {
		denom = epsilon
	}
	for _, r := range results {
		out[r.PublicID] = (r.Similarity - min) / denom
	}
	return out
}
