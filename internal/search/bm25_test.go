package search

import (
	"testing"

	"github.com/brevity-labs/hyve/internal/mutation"
	"github.com/brevity-labs/hyve/model"
	"github.com/brevity-labs/hyve/store"
	"github.com/stretchr/testify/assert"
)

// TestBM25OrderingByTermFrequency reproduces scenario S2: d2 (tf=2)
// outranks d1 (tf=1) despite equal IDF; d3 never contains "alpha" so it
// is excluded from the candidate set entirely.
func TestBM25OrderingByTermFrequency(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	ns.SetIndexedFields([]string{"t"})
	svc := mutation.NewService(ns)
	assert.NoError(t, svc.Insert("d1", []float32{1, 0, 0, 0}, model.Metadata{"t": "alpha beta"}))
	assert.NoError(t, svc.Insert("d2", []float32{0, 1, 0, 0}, model.Metadata{"t": "alpha alpha"}))
	assert.NoError(t, svc.Insert("d3", []float32{0, 0, 1, 0}, model.Metadata{"t": "beta gamma delta"}))

	results := BM25(ns, "alpha", 3, nil)
	assert.Len(t, results, 2)
	assert.Equal(t, "d2", results[0].PublicID)
	assert.Equal(t, "d1", results[1].PublicID)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestBM25EmptyQueryReturnsEmpty(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	ns.SetIndexedFields([]string{"t"})
	svc := mutation.NewService(ns)
	assert.NoError(t, svc.Insert("x", []float32{1, 0, 0, 0}, model.Metadata{"t": "Hello, World!"}))

	assert.Empty(t, BM25(ns, "", 5, nil))
}

// TestBM25TokenizesCaseAndPunctuation reproduces scenario S3's BM25 half.
func TestBM25TokenizesCaseAndPunctuation(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	ns.SetIndexedFields([]string{"t"})
	svc := mutation.NewService(ns)
	assert.NoError(t, svc.Insert("x", []float32{1, 0, 0, 0}, model.Metadata{"t": "Hello, World!"}))

	results := BM25(ns, "hello", 5, nil)
	assert.Len(t, results, 1)
	assert.Equal(t, "x", results[0].PublicID)

	results = BM25(ns, "HELLO-world", 5, nil)
	assert.Len(t, results, 1)
	assert.Equal(t, "x", results[0].PublicID)
}

func TestBM25AppliesMetadataFilter(t *testing.T) {
	ns := store.New("ns1", 4, 10)
	ns.SetIndexedFields([]string{"t"})
	svc := mutation.NewService(ns)
	assert.NoError(t, svc.Insert("a", []float32{1, 0, 0, 0}, model.Metadata{"t": "shared term", "cat": "A"}))
	assert.NoError(t, svc.Insert("b", []float32{0, 1, 0, 0}, model.Metadata{"t": "shared term", "cat": "B"}))

	results := BM25(ns, "shared", 5, Filter{"cat": "A"})
	assert.Len(t, results, 1)
	assert.Equal(t, "a", results[0].PublicID)
}
