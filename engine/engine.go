// Package engine is the top-level façade wiring the registry, mutation,
// search, persistence, and compaction packages into the operation table
// of spec.md §6. It is the only package most callers need to import.
package engine

import (
	"context"
	"log"
	"time"

	"github.com/brevity-labs/hyve/config"
	"github.com/brevity-labs/hyve/internal/compaction"
	hyveerrors "github.com/brevity-labs/hyve/internal/errors"
	"github.com/brevity-labs/hyve/internal/mutation"
	"github.com/brevity-labs/hyve/internal/persistence"
	"github.com/brevity-labs/hyve/internal/search"
	"github.com/brevity-labs/hyve/model"
	"github.com/brevity-labs/hyve/registry"
	"github.com/brevity-labs/hyve/store"
)

// Engine is one process's collection of namespaces, each independent
// and lazily created on first reference (spec.md §4.1).
type Engine struct {
	reg   *registry.Registry
	timer *compaction.Timer
}

// New creates an Engine with no namespaces yet. Namespaces are created
// lazily the first time SetIndexedFields, Insert, BatchInsert, or Load
// names them, mirroring the teacher's index-on-first-use discipline.
func New() *Engine {
	return &Engine{reg: registry.New()}
}

// EnableAutoCompaction starts a background timer that compacts every
// namespace at the given interval, or config.DefaultCompactionIntervalMS
// if interval is zero (spec.md §4.7). Destroy cancels it.
func (e *Engine) EnableAutoCompaction(interval time.Duration) {
	if interval <= 0 {
		interval = time.Duration(config.DefaultCompactionIntervalMS) * time.Millisecond
	}
	e.timer = compaction.NewTimer(e.reg, interval)
	e.timer.Start()
	e.reg.RegisterDestroyHook(e.timer.Stop)
	log.Printf("engine: auto-compaction enabled, interval=%s", interval)
}

// Destroy cancels the compaction timer, if running. It does not drop
// any namespace: the spec offers no explicit namespace-drop operation,
// only process teardown.
func (e *Engine) Destroy() {
	e.reg.Destroy()
}

// ListNamespaces returns every namespace name created so far, sorted.
func (e *Engine) ListNamespaces() []string {
	return e.reg.ListNamespaces()
}

func (e *Engine) namespace(name string, dim, maxElements int) *store.NamespaceStore {
	return e.reg.GetOrCreate(name, dim, maxElements)
}

// existing looks up a namespace that must already exist, for operations
// that take no dim/maxElements (searches, Update, Delete, Save, Compact,
// Stats) and so must not silently create one with the wrong dimension.
func (e *Engine) existing(name string) (*store.NamespaceStore, error) {
	ns, ok := e.reg.Get(name)
	if !ok {
		return nil, hyveerrors.ErrNamespaceNotFound
	}
	return ns, nil
}

// SetIndexedFields replaces namespace's indexed-field list (spec.md §4.4).
// It does not retroactively reindex existing documents (spec.md §9 open
// question 1, resolved as documented behavior).
func (e *Engine) SetIndexedFields(namespace string, dim, maxElements int, fields []string) {
	ns := e.namespace(namespace, dim, maxElements)
	ns.Mu.Lock()
	defer ns.Mu.Unlock()
	ns.SetIndexedFields(fields)
}

// SetBM25Params overwrites the process-wide (k1, b) pair every
// namespace's BM25 scoring reads (spec.md §5, §6).
func (e *Engine) SetBM25Params(k1, b float64) {
	config.SetBM25Params(k1, b)
}

// Insert adds a single document (spec.md §4.4).
func (e *Engine) Insert(namespace string, dim, maxElements int, publicID string, vector []float32, metadata model.Metadata) error {
	ns := e.namespace(namespace, dim, maxElements)
	return mutation.NewService(ns).Insert(publicID, vector, metadata)
}

// BatchInsert adds many documents in one call (spec.md §4.4).
func (e *Engine) BatchInsert(namespace string, dim, maxElements int, entries []mutation.Entry) error {
	ns := e.namespace(namespace, dim, maxElements)
	return mutation.NewService(ns).BatchInsert(entries)
}

// Update replaces a document's vector and, optionally, its metadata
// (spec.md §4.4).
func (e *Engine) Update(namespace string, publicID string, newVector []float32, newMetadata model.Metadata) error {
	ns, err := e.existing(namespace)
	if err != nil {
		return err
	}
	return mutation.NewService(ns).Update(publicID, newVector, newMetadata)
}

// Delete removes a document if present; a missing id is a silent
// no-op (spec.md §4.4).
func (e *Engine) Delete(namespace string, publicID string) error {
	ns, err := e.existing(namespace)
	if err != nil {
		return err
	}
	mutation.NewService(ns).Delete(publicID)
	return nil
}

// Search runs a pure vector kNN search (spec.md §4.5).
func (e *Engine) Search(namespace string, queryVector []float32, k int, filter search.Filter) ([]search.Result, error) {
	ns, err := e.existing(namespace)
	if err != nil {
		return nil, err
	}
	ns.Mu.RLock()
	defer ns.Mu.RUnlock()
	return search.Vector(ns, queryVector, k, filter)
}

// FullTextSearch runs a pure BM25 search (spec.md §4.5).
func (e *Engine) FullTextSearch(namespace string, queryText string, k int, filter search.Filter) ([]search.Result, error) {
	ns, err := e.existing(namespace)
	if err != nil {
		return nil, err
	}
	ns.Mu.RLock()
	defer ns.Mu.RUnlock()
	return search.BM25(ns, queryText, k, filter), nil
}

// HybridSearch runs weighted hybrid fusion, optionally MMR-reranked
// (spec.md §4.5).
func (e *Engine) HybridSearch(ctx context.Context, namespace string, queryVector []float32, queryText string, opts search.HybridOptions) ([]search.HybridResult, error) {
	ns, err := e.existing(namespace)
	if err != nil {
		return nil, err
	}
	ns.Mu.RLock()
	defer ns.Mu.RUnlock()
	return search.Weighted(ctx, ns, queryVector, queryText, opts)
}

// HybridSearchRRF runs Reciprocal Rank Fusion hybrid search (spec.md §4.5).
func (e *Engine) HybridSearchRRF(ctx context.Context, namespace string, queryVector []float32, queryText string, k, rrfK int, filter search.Filter) ([]search.HybridResult, error) {
	ns, err := e.existing(namespace)
	if err != nil {
		return nil, err
	}
	ns.Mu.RLock()
	defer ns.Mu.RUnlock()
	return search.RRF(ctx, ns, queryVector, queryText, k, rrfK, filter)
}

// Save persists namespace to fileBase+".idx"/".meta.json" (spec.md §4.6).
func (e *Engine) Save(ctx context.Context, namespace, fileBase string) error {
	ns, err := e.existing(namespace)
	if err != nil {
		return err
	}
	return persistence.Save(ctx, ns, fileBase)
}

// Load replaces namespace's state with the snapshot at fileBase
// (spec.md §4.6). If the namespace does not exist yet it is created with
// dim and maxElements. A stored vector whose length differs from the
// namespace's dim is reported as load-corrupt; maxElements is not
// compared with the snapshot.
func (e *Engine) Load(ctx context.Context, namespace string, dim, maxElements int, fileBase string) error {
	ns := e.namespace(namespace, dim, maxElements)
	return persistence.Load(ctx, ns, fileBase)
}

// Compact rebuilds namespace with contiguous slot numbering (spec.md §4.7).
func (e *Engine) Compact(namespace string) error {
	ns, err := e.existing(namespace)
	if err != nil {
		return err
	}
	compaction.Compact(ns)
	return nil
}

// NamespaceStats is a read-only snapshot of a namespace's invariants.
// Supplemented operation (see SPEC_FULL.md §5), not part of spec.md's
// original operation table.
type NamespaceStats = store.Stats

// Stats returns namespace's current live-count, slot-allocator, and
// BM25-statistics snapshot, taken under a read lock.
func (e *Engine) Stats(namespace string) (NamespaceStats, error) {
	ns, err := e.existing(namespace)
	if err != nil {
		return NamespaceStats{}, err
	}
	ns.Mu.RLock()
	defer ns.Mu.RUnlock()
	return ns.Snapshot(), nil
}
