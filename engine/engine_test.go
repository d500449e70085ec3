package engine

import (
	"context"
	"path/filepath"
	"testing"

	hyveerrors "github.com/brevity-labs/hyve/internal/errors"
	"github.com/brevity-labs/hyve/internal/mutation"
	"github.com/brevity-labs/hyve/internal/search"
	"github.com/brevity-labs/hyve/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertThenSearchRoundTrip(t *testing.T) {
	eng := New()
	require.NoError(t, eng.Insert("ns1", 4, 10, "a", []float32{1, 0, 0, 0}, nil))
	require.NoError(t, eng.Insert("ns1", 4, 10, "b", []float32{0, 1, 0, 0}, nil))

	results, err := eng.Search("ns1", []float32{1, 0, 0, 0}, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", results[0].PublicID)
}

func TestSearchUnknownNamespaceIsNamespaceNotFound(t *testing.T) {
	eng := New()
	_, err := eng.Search("ghost", []float32{1, 0, 0, 0}, 5, nil)
	assert.ErrorIs(t, err, hyveerrors.ErrNamespaceNotFound)
}

func TestBatchInsertThenFullTextSearch(t *testing.T) {
	eng := New()
	eng.SetIndexedFields("ns1", 4, 10, []string{"t"})
	err := eng.BatchInsert("ns1", 4, 10, []mutation.Entry{
		{PublicID: "a", Vector: []float32{1, 0, 0, 0}, Metadata: model.Metadata{"t": "alpha beta"}},
		{PublicID: "b", Vector: []float32{0, 1, 0, 0}, Metadata: model.Metadata{"t": "alpha alpha"}},
	})
	require.NoError(t, err)

	results, err := eng.FullTextSearch("ns1", "alpha", 5, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "b", results[0].PublicID)
}

func TestHybridSearchRejectsBadWeights(t *testing.T) {
	eng := New()
	require.NoError(t, eng.Insert("ns1", 4, 10, "a", []float32{1, 0, 0, 0}, nil))

	_, err := eng.HybridSearch(context.Background(), "ns1", []float32{1, 0, 0, 0}, "x", search.HybridOptions{
		VectorWeight: 0.4, TextWeight: 0.4, K: 5,
	})
	assert.ErrorIs(t, err, hyveerrors.ErrBadWeights)
}

func TestSaveLoadThroughEngine(t *testing.T) {
	eng := New()
	eng.SetIndexedFields("ns1", 4, 10, []string{"t"})
	require.NoError(t, eng.Insert("ns1", 4, 10, "a", []float32{1, 0, 0, 0}, model.Metadata{"t": "hello"}))

	base := filepath.Join(t.TempDir(), "ns1")
	require.NoError(t, eng.Save(context.Background(), "ns1", base))

	fresh := New()
	require.NoError(t, fresh.Load(context.Background(), "ns1", 4, 10, base))

	stats, err := fresh.Stats("ns1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LiveCount)
}

func TestDeleteThenReinsertPreservesFreeListLength(t *testing.T) {
	eng := New()
	require.NoError(t, eng.Insert("ns1", 4, 10, "p", []float32{1, 0, 0, 0}, nil))
	statsBefore, err := eng.Stats("ns1")
	require.NoError(t, err)

	require.NoError(t, eng.Delete("ns1", "p"))
	require.NoError(t, eng.Insert("ns1", 4, 10, "p", []float32{0, 1, 0, 0}, nil))

	statsAfter, err := eng.Stats("ns1")
	require.NoError(t, err)
	assert.Equal(t, statsBefore.FreeListLen, statsAfter.FreeListLen)

	results, err := eng.Search("ns1", []float32{0, 1, 0, 0}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "p", results[0].PublicID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-4)
}

func TestCompactThroughEngine(t *testing.T) {
	eng := New()
	require.NoError(t, eng.Insert("ns1", 4, 10, "a", []float32{1, 0, 0, 0}, nil))
	require.NoError(t, eng.Insert("ns1", 4, 10, "b", []float32{0, 1, 0, 0}, nil))
	require.NoError(t, eng.Delete("ns1", "a"))

	require.NoError(t, eng.Compact("ns1"))

	stats, err := eng.Stats("ns1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FreeListLen)
	assert.Equal(t, 1, stats.LiveCount)
}

func TestListNamespaces(t *testing.T) {
	eng := New()
	require.NoError(t, eng.Insert("zeta", 4, 10, "a", []float32{1, 0, 0, 0}, nil))
	require.NoError(t, eng.Insert("alpha", 4, 10, "b", []float32{1, 0, 0, 0}, nil))
	assert.Equal(t, []string{"alpha", "zeta"}, eng.ListNamespaces())
}

func TestDestroyStopsCompactionTimer(t *testing.T) {
	eng := New()
	eng.EnableAutoCompaction(0)
	assert.NotPanics(t, func() { eng.Destroy() })
}
