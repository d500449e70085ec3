// Package registry holds the process-lifetime mapping of namespace name
// to namespace store, creating namespaces lazily on first reference
// (spec §4.1, component I).
package registry

import (
	"sort"
	"sync"

	"github.com/brevity-labs/hyve/store"
)

// Registry owns every namespace in one engine instance. Its own mutex
// guards only the name->store map; each namespace's own Mu still
// guards that namespace's data, so writers on different namespaces
// never contend here beyond the brief map lookup (spec §5).
type Registry struct {
	mu         sync.Mutex
	namespaces map[string]*store.NamespaceStore
	onDestroy  []func()
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{namespaces: make(map[string]*store.NamespaceStore)}
}

// GetOrCreate returns the namespace named name, creating it with dim
// and maxElements if it does not exist yet. Subsequent calls for the
// same name ignore dim/maxElements and return the existing namespace.
func (r *Registry) GetOrCreate(name string, dim, maxElements int) *store.NamespaceStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.namespaces[name]
	if ok {
		return ns
	}
	ns = store.New(name, dim, maxElements)
	r.namespaces[name] = ns
	return ns
}

// Get returns the namespace named name, if it has been created.
func (r *Registry) Get(name string) (*store.NamespaceStore, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ns, ok := r.namespaces[name]
	return ns, ok
}

// ListNamespaces returns every namespace name currently registered,
// sorted for deterministic output. Supplemented operation, not part of
// the original operation table (see SPEC_FULL.md).
func (r *Registry) ListNamespaces() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterDestroyHook adds fn to the set of functions Destroy calls.
// Used by the owning engine to tie a compaction timer's lifetime to
// the registry's, without the registry importing the compaction
// package (which itself depends on registry to enumerate namespaces).
func (r *Registry) RegisterDestroyHook(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDestroy = append(r.onDestroy, fn)
}

// Destroy runs every registered destroy hook (e.g. stopping a
// compaction timer). Spec §4.7/§9 requires destroying the engine to
// cancel any running compaction timer; there is no explicit
// namespace-drop operation otherwise.
func (r *Registry) Destroy() {
	r.mu.Lock()
	hooks := append([]func(){}, r.onDestroy...)
	r.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// ForEach calls fn for every registered namespace. Used by the
// all-namespace compaction timer.
func (r *Registry) ForEach(fn func(name string, ns *store.NamespaceStore)) {
	r.mu.Lock()
	snapshot := make([]*store.NamespaceStore, 0, len(r.namespaces))
	names := make([]string, 0, len(r.namespaces))
	for name, ns := range r.namespaces {
		names = append(names, name)
		snapshot = append(snapshot, ns)
	}
	r.mu.Unlock()

	for i, ns := range snapshot {
		fn(names[i], ns)
	}
}
