// Package persistence saves and restores a namespace's state to two
// sibling files: a vector-index blob the adapter defines the format of,
// and a metadata JSON blob whose schema is fixed by the engine (spec
// §4.6, §6).
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brevity-labs/hyve/index"
	hyveerrors "github.com/brevity-labs/hyve/internal/errors"
	"github.com/brevity-labs/hyve/model"
	"github.com/brevity-labs/hyve/store"
	"github.com/brevity-labs/hyve/vectorindex"
	"github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"
)

const indexSuffix = ".idx"
const metaSuffix = ".meta.json"

// entrySnapshot is one document as it appears in the revMap array.
type entrySnapshot struct {
	PublicID string         `json:"publicId"`
	Vector   []float32      `json:"vector"`
	Metadata model.Metadata `json:"metadata"`
}

// revMapPair marshals as the two-element JSON array [slot, entry] the
// schema requires, rather than an object keyed by slot (JSON object
// keys must be strings, and the schema treats slot numbers as data).
type revMapPair struct {
	Slot  uint64
	Entry entrySnapshot
}

func (p revMapPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{p.Slot, p.Entry})
}

func (p *revMapPair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("revMap entry: %w", err)
	}
	if err := json.Unmarshal(raw[0], &p.Slot); err != nil {
		return fmt.Errorf("revMap entry slot: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Entry); err != nil {
		return fmt.Errorf("revMap entry value: %w", err)
	}
	return nil
}

// postingPair marshals as [term, [slot, ...]].
type postingPair struct {
	Term  string
	Slots []uint64
}

func (p postingPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{p.Term, p.Slots})
}

func (p *postingPair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("fullTextIndex entry: %w", err)
	}
	if err := json.Unmarshal(raw[0], &p.Term); err != nil {
		return fmt.Errorf("fullTextIndex entry term: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Slots); err != nil {
		return fmt.Errorf("fullTextIndex entry slots: %w", err)
	}
	return nil
}

// docLengthPair marshals as [slot, length].
type docLengthPair struct {
	Slot   uint64
	Length int
}

func (p docLengthPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{p.Slot, p.Length})
}

func (p *docLengthPair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("docLengths entry: %w", err)
	}
	if err := json.Unmarshal(raw[0], &p.Slot); err != nil {
		return fmt.Errorf("docLengths entry slot: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Length); err != nil {
		return fmt.Errorf("docLengths entry length: %w", err)
	}
	return nil
}

// snapshot is the exact metadata JSON schema of spec §6.
type snapshot struct {
	IDMap          map[string]uint64 `json:"idMap"`
	RevMap         []revMapPair      `json:"revMap"`
	NextInternalID uint64            `json:"nextInternalId"`
	FreeList       []uint64          `json:"freeList"`
	FullTextIndex  []postingPair     `json:"fullTextIndex"`
	IndexedFields  []string          `json:"indexedFields"`
	DocLengths     []docLengthPair   `json:"docLengths"`
	AvgDocLength   float64           `json:"avgDocLength"`
	TotalDocs      int               `json:"totalDocs"`
}

// Save writes ns's vector index and metadata to fileBase+".idx" and
// fileBase+".meta.json" under ns's write lock. The two files are
// written concurrently (errgroup), mirroring the "simultaneously write"
// requirement of spec §4.6; the metadata file is written atomically via
// a temp-file-plus-rename so a crash mid-write never leaves a truncated
// snapshot on disk.
func Save(ctx context.Context, ns *store.NamespaceStore, fileBase string) error {
	ns.Mu.Lock()
	defer ns.Mu.Unlock()

	if dir := filepath.Dir(fileBase); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("persistence: failed to create directory %s: %w", dir, err)
		}
	}

	snap := buildSnapshot(ns)
	metaPath := fileBase + metaSuffix
	idxPath := fileBase + indexSuffix

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ns.Vector.WriteIndex(idxPath)
	})
	g.Go(func() error {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("persistence: failed to marshal metadata: %w", err)
		}
		return atomic.WriteFile(metaPath, bytes.NewReader(data))
	})
	return g.Wait()
}

func buildSnapshot(ns *store.NamespaceStore) snapshot {
	idMap := make(map[string]uint64)
	revMap := make([]revMapPair, 0, ns.LiveCount())
	ns.ForEachLive(func(publicID string, slot uint64, entry *model.Entry) {
		idMap[publicID] = slot
		revMap = append(revMap, revMapPair{
			Slot: slot,
			Entry: entrySnapshot{
				PublicID: entry.PublicID,
				Vector:   entry.Vector,
				Metadata: entry.Metadata,
			},
		})
	})

	fullText := make([]postingPair, 0, len(ns.Inverted.Terms()))
	for _, term := range ns.Inverted.Terms() {
		slots := make([]uint64, 0)
		for slot := range ns.Inverted.Postings(term) {
			slots = append(slots, slot)
		}
		fullText = append(fullText, postingPair{Term: term, Slots: slots})
	}

	docLengths := make([]docLengthPair, 0)
	for slot, length := range ns.Inverted.DocLengths() {
		docLengths = append(docLengths, docLengthPair{Slot: slot, Length: length})
	}

	return snapshot{
		IDMap:          idMap,
		RevMap:         revMap,
		NextInternalID: ns.NextSlot(),
		FreeList:       ns.FreeList(),
		FullTextIndex:  fullText,
		IndexedFields:  ns.IndexedFields(),
		DocLengths:     docLengths,
		AvgDocLength:   ns.Inverted.AvgDocLength(),
		TotalDocs:      ns.Inverted.TotalDocs(),
	}
}

// Load replaces ns's entire state with the snapshot at fileBase under
// ns's write lock, discarding any residual pre-load state. Both files
// are read concurrently. A missing file, malformed JSON, or a vector
// whose length disagrees with ns's configured dim is reported as
// load-corrupt (spec §4.6).
func Load(ctx context.Context, ns *store.NamespaceStore, fileBase string) error {
	ns.Mu.Lock()
	defer ns.Mu.Unlock()

	metaPath := fileBase + metaSuffix
	idxPath := fileBase + indexSuffix

	var snap snapshot
	newVector := vectorindex.New(ns.Dim)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := os.ReadFile(metaPath) // #nosec G304 -- fileBase is supplied by the caller, not untrusted input
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &snap)
	})
	g.Go(func() error {
		return newVector.ReadIndex(idxPath)
	})
	if err := g.Wait(); err != nil {
		return hyveerrors.NewLoadCorruptError(ns.Name, fileBase, err)
	}

	idToSlot := make(map[string]uint64, len(snap.IDMap))
	for id, slot := range snap.IDMap {
		idToSlot[id] = slot
	}

	slotToEntry := make(map[uint64]*model.Entry, len(snap.RevMap))
	for _, pair := range snap.RevMap {
		if len(pair.Entry.Vector) != ns.Dim {
			return hyveerrors.NewLoadCorruptError(ns.Name, fileBase,
				fmt.Errorf("entry %q has vector dimension %d, namespace dim is %d", pair.Entry.PublicID, len(pair.Entry.Vector), ns.Dim))
		}
		slotToEntry[pair.Slot] = &model.Entry{
			PublicID: pair.Entry.PublicID,
			Vector:   pair.Entry.Vector,
			Metadata: pair.Entry.Metadata,
		}
	}

	postings := make(map[string][]uint64, len(snap.FullTextIndex))
	for _, p := range snap.FullTextIndex {
		postings[p.Term] = p.Slots
	}
	docLengths := make(map[uint64]int, len(snap.DocLengths))
	for _, p := range snap.DocLengths {
		docLengths[p.Slot] = p.Length
	}
	inverted := index.Restore(postings, docLengths)

	ns.Replace(newVector, inverted, idToSlot, slotToEntry, snap.FreeList, snap.NextInternalID)
	ns.SetIndexedFields(snap.IndexedFields)
	return nil
}
