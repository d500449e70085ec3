// Package index implements the inverted index and the BM25 document
// statistics kept in lock-step with it. Both are plain in-memory state
// guarded by the owning namespace's lock — this package has no lock of
// its own (spec §9: "keep the lock per-namespace; do not globalize").
package index

import (
	"github.com/brevity-labs/hyve/internal/tokenizer"
	"github.com/brevity-labs/hyve/model"
)

// InvertedIndex maps terms to the set of slots whose indexed fields
// mention them, and carries the BM25 document-length statistics derived
// from the same indexing pass.
type InvertedIndex struct {
	postings   map[string]map[uint64]struct{} // term -> slot set
	slotTerms  map[uint64]map[string]struct{} // slot -> term set (reverse index, for O(affected) removal)
	docLengths map[uint64]int

	totalDocs    int
	avgDocLength float64
}

// New creates an empty InvertedIndex.
func New() *InvertedIndex {
	return &InvertedIndex{
		postings:   make(map[string]map[uint64]struct{}),
		slotTerms:  make(map[uint64]map[string]struct{}),
		docLengths: make(map[uint64]int),
	}
}

// Index (re)computes slot's membership in the inverted index from
// metadata, restricted to indexedFields, and updates its document length
// and the running BM25 statistics. Calling Index on a slot that is
// already indexed first removes its prior memberships, so Index is safe
// to call again after an Update.
func (ii *InvertedIndex) Index(slot uint64, metadata model.Metadata, indexedFields []string) {
	ii.Unindex(slot)

	terms := make(map[string]struct{})
	docLength := 0
	for _, field := range indexedFields {
		value, ok := metadata[field]
		if !ok {
			continue
		}
		text, ok := value.(string)
		if !ok {
			continue
		}
		for _, tok := range tokenizer.Tokenize(text) {
			docLength++
			terms[tok] = struct{}{}
			posting, ok := ii.postings[tok]
			if !ok {
				posting = make(map[uint64]struct{})
				ii.postings[tok] = posting
			}
			posting[slot] = struct{}{}
		}
	}

	ii.slotTerms[slot] = terms
	ii.docLengths[slot] = docLength
	ii.refreshStats()
}

// Unindex removes slot from every posting it belongs to and from the
// document-length statistics. A no-op if slot was never indexed.
func (ii *InvertedIndex) Unindex(slot uint64) {
	terms, ok := ii.slotTerms[slot]
	if !ok {
		return
	}
	for term := range terms {
		posting := ii.postings[term]
		delete(posting, slot)
		if len(posting) == 0 {
			delete(ii.postings, term)
		}
	}
	delete(ii.slotTerms, slot)
	delete(ii.docLengths, slot)
	ii.refreshStats()
}

func (ii *InvertedIndex) refreshStats() {
	ii.totalDocs = len(ii.docLengths)
	if ii.totalDocs == 0 {
		ii.avgDocLength = 0
		return
	}
	sum := 0
	for _, l := range ii.docLengths {
		sum += l
	}
	ii.avgDocLength = float64(sum) / float64(ii.totalDocs)
}

// Postings returns the live slot set for term (nil if the term has no
// postings). Callers must not mutate the returned map.
func (ii *InvertedIndex) Postings(term string) map[uint64]struct{} {
	return ii.postings[term]
}

// DocLength returns the document length recorded for slot at its last
// indexing, and whether slot is currently indexed.
func (ii *InvertedIndex) DocLength(slot uint64) (int, bool) {
	l, ok := ii.docLengths[slot]
	return l, ok
}

// TotalDocs returns the number of currently indexed slots.
func (ii *InvertedIndex) TotalDocs() int { return ii.totalDocs }

// AvgDocLength returns the mean document length across indexed slots, or
// 0 if none are indexed.
func (ii *InvertedIndex) AvgDocLength() float64 { return ii.avgDocLength }

// DocFreq returns the number of slots whose postings mention term.
func (ii *InvertedIndex) DocFreq(term string) int {
	return len(ii.postings[term])
}

// Terms returns every term with a non-empty posting. Used by persistence
// to serialize the index; order is not significant.
func (ii *InvertedIndex) Terms() []string {
	terms := make([]string, 0, len(ii.postings))
	for t := range ii.postings {
		terms = append(terms, t)
	}
	return terms
}

// DocLengths returns a copy of the slot -> document-length map. Used by
// persistence.
func (ii *InvertedIndex) DocLengths() map[uint64]int {
	out := make(map[uint64]int, len(ii.docLengths))
	for k, v := range ii.docLengths {
		out[k] = v
	}
	return out
}

// Restore replaces the inverted index's state wholesale, used when
// loading a persisted snapshot. postings maps each term to its slot
// list; docLengths maps each slot to its recorded document length.
func Restore(postings map[string][]uint64, docLengths map[uint64]int) *InvertedIndex {
	ii := New()
	for term, slots := range postings {
		set := make(map[uint64]struct{}, len(slots))
		for _, s := range slots {
			set[s] = struct{}{}
		}
		ii.postings[term] = set
	}
	for slot, length := range docLengths {
		ii.docLengths[slot] = length
	}
	// Rebuild the reverse index so future Unindex/Index calls stay correct.
	// Every slot with a recorded length gets an entry, including slots
	// whose indexed fields produced no terms.
	for slot := range ii.docLengths {
		ii.slotTerms[slot] = make(map[string]struct{})
	}
	for term, slots := range ii.postings {
		for slot := range slots {
			if ii.slotTerms[slot] == nil {
				ii.slotTerms[slot] = make(map[string]struct{})
			}
			ii.slotTerms[slot][term] = struct{}{}
		}
	}
	ii.refreshStats()
	return ii
}
