package search

import (
	"math"

	"github.com/brevity-labs/hyve/config"
	"github.com/brevity-labs/hyve/internal/tokenizer"
	"github.com/brevity-labs/hyve/model"
	"github.com/brevity-labs/hyve/store"
)

// scored pairs a candidate slot with its raw BM25 score, kept around
// only long enough to sort and cut to k.
type scored struct {
	slot  uint64
	score float64
}

// BM25 runs a pure keyword search over ns's inverted index (spec
// §4.5). It unions the postings of every query term, scores each
// candidate with Okapi BM25 under the process-wide (k1, b) pair, sorts
// descending, applies the metadata filter, and returns the first k.
func BM25(ns *store.NamespaceStore, queryText string, k int, filter Filter) []Result {
	if k <= 0 {
		k = DefaultK
	}

	qtf := termFrequencies(tokenizer.Tokenize(queryText))
	if len(qtf) == 0 {
		return nil
	}

	candidates := gatherCandidates(ns, qtf)
	if len(candidates) == 0 {
		return nil
	}

	params := config.CurrentBM25Params()
	avgDocLength := ns.Inverted.AvgDocLength()
	totalDocs := ns.Inverted.TotalDocs()

	scores := make([]scored, 0, len(candidates))
	for slot := range candidates {
		entry, ok := ns.Entry(slot)
		if !ok {
			continue
		}
		dtf := documentTermFrequencies(entry, ns.IndexedFields(), qtf)
		docLength, _ := ns.Inverted.DocLength(slot)
		s := scoreBM25(ns, dtf, docLength, avgDocLength, totalDocs, params)
		scores = append(scores, scored{slot: slot, score: s})
	}

	sortScoredDesc(scores)

	results := make([]Result, 0, k)
	for _, sc := range scores {
		entry, ok := ns.Entry(sc.slot)
		if !ok || !entry.MatchesFilter(filter) {
			continue
		}
		results = append(results, Result{
			PublicID:   entry.PublicID,
			Similarity: sc.score,
			Metadata:   entry.Metadata,
		})
		if len(results) == k {
			break
		}
	}
	return results
}

func termFrequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

func gatherCandidates(ns *store.NamespaceStore, qtf map[string]int) map[uint64]struct{} {
	candidates := make(map[uint64]struct{})
	for term := range qtf {
		for slot := range ns.Inverted.Postings(term) {
			candidates[slot] = struct{}{}
		}
	}
	return candidates
}

// documentTermFrequencies re-tokenizes entry's indexed fields and counts
// only tokens that also appear in the query (spec §4.5 step 4).
func documentTermFrequencies(entry *model.Entry, indexedFields []string, qtf map[string]int) map[string]int {
	dtf := make(map[string]int, len(qtf))
	for _, field := range indexedFields {
		value, ok := entry.StringField(field)
		if !ok {
			continue
		}
		for _, tok := range tokenizer.Tokenize(value) {
			if _, inQuery := qtf[tok]; inQuery {
				dtf[tok]++
			}
		}
	}
	return dtf
}

func scoreBM25(ns *store.NamespaceStore, dtf map[string]int, docLength int, avgDocLength float64, totalDocs int, params config.BM25Params) float64 {
	if avgDocLength == 0 {
		return 0
	}
	var score float64
	for term, tf := range dtf {
		idf := idf(ns, term, totalDocs)
		numerator := float64(tf) * (params.K1 + 1)
		denominator := float64(tf) + params.K1*(1-params.B+params.B*float64(docLength)/avgDocLength)
		score += idf * (numerator / denominator)
	}
	return score
}

// idf computes ln((N - df + 0.5)/(df + 0.5) + 1), the "+1" keeping the
// result non-negative for every term (spec §4.5 step 5).
func idf(ns *store.NamespaceStore, term string, totalDocs int) float64 {
	df := ns.Inverted.DocFreq(term)
	n := float64(totalDocs)
	return math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
}

func sortScoredDesc(scores []scored) {
	// Simple insertion sort is adequate: candidate sets are bounded by
	// the number of documents mentioning any query term, never the
	// whole corpus, and this runs under the caller's read lock.
	for i := 1; i < len(scores); i++ {
		for j := i; j > 0 && scores[j].score > scores[j-1].score; j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
}
