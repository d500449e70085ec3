package search

import (
	"testing"

	"github.com/brevity-labs/hyve/internal/mutation"
	"github.com/brevity-labs/hyve/store"
	"github.com/stretchr/testify/assert"
)

func TestMMRPreservesInputSetExactly(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	svc := mutation.NewService(ns)
	assert.NoError(t, svc.Insert("a", []float32{1, 0, 0, 0}, nil))
	assert.NoError(t, svc.Insert("b", []float32{1, 0, 0, 0}, nil))
	assert.NoError(t, svc.Insert("c", []float32{0, 1, 0, 0}, nil))

	input := []HybridResult{
		{Result: Result{PublicID: "a"}, CombinedScore: 0.9},
		{Result: Result{PublicID: "b"}, CombinedScore: 0.8},
		{Result: Result{PublicID: "c"}, CombinedScore: 0.5},
	}
	out := mmr(ns, input, []float32{1, 0, 0, 0})

	assert.Len(t, out, len(input))
	seen := make(map[string]bool)
	for _, r := range out {
		assert.False(t, seen[r.PublicID], "MMR must not duplicate a result")
		seen[r.PublicID] = true
	}
	for _, r := range input {
		assert.True(t, seen[r.PublicID])
	}
}

// TestMMRPrefersDiversityOverRawScore: b is near-identical to a (already
// selected first), c is distant but scores slightly lower than b — MMR
// should still pick c second because b's similarity to the already
// selected a crowds out its score advantage.
func TestMMRPrefersDiversityOverRawScore(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	svc := mutation.NewService(ns)
	assert.NoError(t, svc.Insert("a", []float32{1, 0, 0, 0}, nil))
	assert.NoError(t, svc.Insert("b", []float32{1, 0.01, 0, 0}, nil))
	assert.NoError(t, svc.Insert("c", []float32{0, 1, 0, 0}, nil))

	input := []HybridResult{
		{Result: Result{PublicID: "a"}, CombinedScore: 1.0},
		{Result: Result{PublicID: "b"}, CombinedScore: 0.95},
		{Result: Result{PublicID: "c"}, CombinedScore: 0.90},
	}
	out := mmr(ns, input, []float32{1, 0, 0, 0})

	assert.Equal(t, "a", out[0].PublicID)
	assert.Equal(t, "c", out[1].PublicID)
	assert.Equal(t, "b", out[2].PublicID)
}

// TestMMRBoostsCandidateOppositeSelected: b sits in the opposite
// direction from already-selected a (cosine -1), so the diversity term
// -(1-lambda)*maxSim must add a positive amount to b's score, not floor
// maxSim at zero. b's raw score (0.4) trails c's (0.5, cosine 0 with a),
// but the negative-similarity boost should still push b ahead of c.
func TestMMRBoostsCandidateOppositeSelected(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	svc := mutation.NewService(ns)
	assert.NoError(t, svc.Insert("a", []float32{1, 0, 0, 0}, nil))
	assert.NoError(t, svc.Insert("b", []float32{-1, 0, 0, 0}, nil))
	assert.NoError(t, svc.Insert("c", []float32{0, 1, 0, 0}, nil))

	input := []HybridResult{
		{Result: Result{PublicID: "a"}, CombinedScore: 1.0},
		{Result: Result{PublicID: "b"}, CombinedScore: 0.4},
		{Result: Result{PublicID: "c"}, CombinedScore: 0.5},
	}
	out := mmr(ns, input, []float32{1, 0, 0, 0})

	assert.Equal(t, "a", out[0].PublicID)
	assert.Equal(t, "b", out[1].PublicID)
	assert.Equal(t, "c", out[2].PublicID)
}
