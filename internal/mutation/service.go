// Package mutation implements Insert, BatchInsert, Update, and Delete
// against a namespace's store, inverted index, and vector index, keeping
// all three consistent under the namespace's write lock (spec §4.4).
package mutation

import (
	hyveerrors "github.com/brevity-labs/hyve/internal/errors"
	"github.com/brevity-labs/hyve/model"
	"github.com/brevity-labs/hyve/store"
)

// Service performs mutations against a single namespace. It holds no
// state of its own beyond the namespace it was built for; the teacher's
// indexing.Service similarly wraps an invertedIndex and a documentStore,
// but locked separately — here a single Mu covers both, so Service
// acquires it itself rather than leaving that to the caller.
type Service struct {
	ns *store.NamespaceStore
}

// NewService builds a mutation Service over ns.
func NewService(ns *store.NamespaceStore) *Service {
	return &Service{ns: ns}
}

// Entry is one member of a BatchInsert call.
type Entry struct {
	PublicID string
	Vector   []float32
	Metadata model.Metadata
}

// Insert adds a new document under publicID. See package doc and spec
// §4.4 for the precondition and atomicity contract.
func (s *Service) Insert(publicID string, vector []float32, metadata model.Metadata) error {
	s.ns.Mu.Lock()
	defer s.ns.Mu.Unlock()
	return s.insertLocked(publicID, vector, metadata)
}

// insertLocked performs one insert. Callers must hold ns.Mu for writing.
func (s *Service) insertLocked(publicID string, vector []float32, metadata model.Metadata) error {
	if len(vector) != s.ns.Dim {
		return hyveerrors.NewDimMismatchError(s.ns.Name, s.ns.Dim, len(vector))
	}
	if _, live := s.ns.Slot(publicID); live {
		return hyveerrors.NewDuplicateIDError(s.ns.Name, publicID)
	}

	slot, ok := s.ns.AllocateSlot()
	if !ok {
		return hyveerrors.NewCapacityExhaustedError(s.ns.Name, s.ns.MaxElements)
	}

	entry := &model.Entry{PublicID: publicID, Vector: vector, Metadata: metadata}
	s.ns.Bind(publicID, slot, entry)
	s.ns.Inverted.Index(slot, metadata, s.ns.IndexedFields())
	if err := s.ns.Vector.AddPoint(vector, slot); err != nil {
		return err
	}
	return nil
}

// BatchInsert validates id uniqueness across the whole batch (and
// against already-live ids) before touching any state, then inserts
// entries one at a time. A later entry's dimension mismatch leaves
// earlier entries in the batch committed — see spec §4.4 and §9 open
// question 2; DESIGN.md records this as the chosen, documented
// partial-apply behavior rather than an all-or-nothing transaction.
func (s *Service) BatchInsert(entries []Entry) error {
	s.ns.Mu.Lock()
	defer s.ns.Mu.Unlock()

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, live := s.ns.Slot(e.PublicID); live {
			return hyveerrors.NewDuplicateIDError(s.ns.Name, e.PublicID)
		}
		if _, dup := seen[e.PublicID]; dup {
			return hyveerrors.NewDuplicateIDError(s.ns.Name, e.PublicID)
		}
		seen[e.PublicID] = struct{}{}
	}

	for _, e := range entries {
		if err := s.insertLocked(e.PublicID, e.Vector, e.Metadata); err != nil {
			return err
		}
	}
	return nil
}

// Update replaces publicID's vector (and, if newMetadata is non-nil,
// its metadata), preserving its slot number. The slot is always fully
// reindexed, even when only the vector changed (spec §4.4).
func (s *Service) Update(publicID string, newVector []float32, newMetadata model.Metadata) error {
	s.ns.Mu.Lock()
	defer s.ns.Mu.Unlock()

	if len(newVector) != s.ns.Dim {
		return hyveerrors.NewDimMismatchError(s.ns.Name, s.ns.Dim, len(newVector))
	}
	slot, live := s.ns.Slot(publicID)
	if !live {
		return hyveerrors.NewNotFoundError(s.ns.Name, publicID)
	}
	entry, _ := s.ns.Entry(slot)

	s.ns.Vector.MarkDelete(slot)
	if err := s.ns.Vector.AddPoint(newVector, slot); err != nil {
		return err
	}

	entry.Vector = newVector
	if newMetadata != nil {
		entry.Metadata = newMetadata
	}
	s.ns.Inverted.Index(slot, entry.Metadata, s.ns.IndexedFields())
	return nil
}

// Delete removes publicID if live. A missing id is a silent no-op, not
// an error (spec §4.4).
func (s *Service) Delete(publicID string) {
	s.ns.Mu.Lock()
	defer s.ns.Mu.Unlock()

	slot, live := s.ns.Slot(publicID)
	if !live {
		return
	}
	s.ns.Vector.MarkDelete(slot)
	s.ns.Unbind(publicID, slot)
	s.ns.ReleaseSlot(slot)
	s.ns.Inverted.Unindex(slot)
}
