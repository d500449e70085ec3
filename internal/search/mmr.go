package search

import (
	"math"

	"github.com/brevity-labs/hyve/store"
)

// mmr reranks an already-ordered hybrid result list by Maximal Marginal
// Relevance with the fixed diversity weight mmrLambda (spec §4.5):
// greedily pick the candidate maximizing
// lambda*combined_score - (1-lambda)*max_similarity_to_selected,
// breaking ties by earliest position in the input order. queryVector is
// accepted for parity with the spec's signature even though MMR's
// diversity term only compares candidate vectors to already-selected
// ones, not to the query.
func mmr(ns *store.NamespaceStore, ordered []HybridResult, queryVector []float32) []HybridResult {
	_ = queryVector
	if len(ordered) == 0 {
		return ordered
	}

	vectors := make(map[string][]float32, len(ordered))
	for _, r := range ordered {
		if slot, ok := ns.Slot(r.PublicID); ok {
			if entry, ok := ns.Entry(slot); ok {
				vectors[r.PublicID] = entry.Vector
			}
		}
	}

	selected := []HybridResult{ordered[0]}
	remaining := make([]HybridResult, len(ordered)-1)
	copy(remaining, ordered[1:])

	for len(remaining) > 0 {
		bestIdx := -1
		var bestScore float64
		for i, c := range remaining {
			maxSim := -math.MaxFloat64
			for _, s := range selected {
				sim := cosineSimilarity(vectors[c.PublicID], vectors[s.PublicID])
				if sim > maxSim {
					maxSim = sim
				}
			}
			mmrScore := mmrLambda*c.CombinedScore - (1-mmrLambda)*maxSim
			if bestIdx == -1 || mmrScore > bestScore {
				bestIdx = i
				bestScore = mmrScore
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
