package search

import (
	"context"
	"testing"

	hyveerrors "github.com/brevity-labs/hyve/internal/errors"
	"github.com/brevity-labs/hyve/internal/mutation"
	"github.com/brevity-labs/hyve/model"
	"github.com/brevity-labs/hyve/store"
	"github.com/stretchr/testify/assert"
)

func TestWeightedRejectsBadWeights(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	_, err := Weighted(context.Background(), ns, []float32{1, 0, 0, 0}, "q", HybridOptions{VectorWeight: 0.5, TextWeight: 0.6, K: 5})
	assert.ErrorIs(t, err, hyveerrors.ErrBadWeights)
}

func TestWeightedCombinesBothSignals(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	ns.SetIndexedFields([]string{"t"})
	svc := mutation.NewService(ns)
	assert.NoError(t, svc.Insert("a", []float32{1, 0, 0, 0}, model.Metadata{"t": "alpha"}))
	assert.NoError(t, svc.Insert("b", []float32{0, 1, 0, 0}, model.Metadata{"t": "alpha alpha"}))

	results, err := Weighted(context.Background(), ns, []float32{1, 0, 0, 0}, "alpha", HybridOptions{VectorWeight: 0.5, TextWeight: 0.5, K: 2})
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, r.CombinedScore, r.Similarity)
	}
}

// TestRRFFavorsIDRankedWellInBothLists exercises the S7 shape: an id
// that ranks near the top of both signal lists should outrank one that
// ranks first in only a single list, once rank-reciprocal scores are
// summed across lists.
func TestRRFFavorsIDRankedWellInBothLists(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	ns.SetIndexedFields([]string{"t"})
	svc := mutation.NewService(ns)
	// a: nearest vector match, weakest text match.
	assert.NoError(t, svc.Insert("a", []float32{1, 0, 0, 0}, model.Metadata{"t": "keyword"}))
	// b: second-nearest vector match, strongest text match.
	assert.NoError(t, svc.Insert("b", []float32{0.9, 0.1, 0, 0}, model.Metadata{"t": "keyword keyword keyword"}))
	// c: farthest vector match, second-strongest text match.
	assert.NoError(t, svc.Insert("c", []float32{0.7, 0.3, 0, 0}, model.Metadata{"t": "keyword keyword"}))

	results, err := RRF(context.Background(), ns, []float32{1, 0, 0, 0}, "keyword", 3, 60, nil)
	assert.NoError(t, err)
	assert.Len(t, results, 3)
	// b ranks 2nd vector / 1st text: its fused score should beat a, which
	// ranks 1st vector / 3rd text, since RRF rewards consistent ranking
	// across both lists over a single first-place finish.
	var scoreA, scoreB float64
	for _, r := range results {
		switch r.PublicID {
		case "a":
			scoreA = r.CombinedScore
		case "b":
			scoreB = r.CombinedScore
		}
	}
	assert.Greater(t, scoreB, scoreA)
}

// TestRRFScoreNeverExceedsFirstPlaceInBothLists bounds the fused score:
// ranking first in both the vector and text lists is the best any id
// can do, scoring 2/(rrfK+1) with 1-based ranks, so no result may score
// above the looser bound 1/rrfK + 1/(rrfK+1) checked here.
func TestRRFScoreNeverExceedsFirstPlaceInBothLists(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	ns.SetIndexedFields([]string{"t"})
	svc := mutation.NewService(ns)
	assert.NoError(t, svc.Insert("a", []float32{1, 0, 0, 0}, model.Metadata{"t": "keyword"}))
	assert.NoError(t, svc.Insert("b", []float32{0.9, 0.1, 0, 0}, model.Metadata{"t": "keyword keyword"}))
	assert.NoError(t, svc.Insert("c", []float32{0.7, 0.3, 0, 0}, model.Metadata{"t": "keyword keyword keyword"}))

	const rrfK = 60
	results, err := RRF(context.Background(), ns, []float32{1, 0, 0, 0}, "keyword", 3, rrfK, nil)
	assert.NoError(t, err)

	bound := 1.0/float64(rrfK) + 1.0/float64(rrfK+1)
	for _, r := range results {
		assert.LessOrEqual(t, r.CombinedScore, bound)
	}
}

func TestRRFScoreEqualsSimilarityField(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	ns.SetIndexedFields([]string{"t"})
	svc := mutation.NewService(ns)
	assert.NoError(t, svc.Insert("a", []float32{1, 0, 0, 0}, model.Metadata{"t": "solo"}))

	results, err := RRF(context.Background(), ns, []float32{1, 0, 0, 0}, "solo", 5, 60, nil)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, results[0].CombinedScore, results[0].Similarity)
}
