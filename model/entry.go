// Package model holds the data types shared across the engine, index, and
// store packages: the document entry bound to a slot and its metadata.
package model

import "reflect"

// Metadata is a flexible map of scalar/textual document attributes.
// Values are whatever the caller supplied; only string values are eligible
// for tokenization into the inverted index (see index.InvertedIndex).
type Metadata map[string]interface{}

// Entry is a single document stored at one slot within a namespace: a
// public identifier, its dense embedding vector, and optional metadata.
type Entry struct {
	PublicID string
	Vector   []float32
	Metadata Metadata
}

// StringField returns metadata[field] if present and a string, else "", false.
func (e Entry) StringField(field string) (string, bool) {
	v, ok := e.Metadata[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// MatchesFilter reports whether the entry's metadata satisfies every
// key == value constraint in filter. An empty filter always matches.
// Metadata values are arbitrary JSON-serializable data, so slice- and
// map-typed values (uncomparable with ==) are compared with
// reflect.DeepEqual instead of a bare !=, which would panic.
func (e Entry) MatchesFilter(filter map[string]interface{}) bool {
	for k, want := range filter {
		got, ok := e.Metadata[k]
		if !ok {
			return false
		}
		if !isComparable(got) || !isComparable(want) {
			if !reflect.DeepEqual(got, want) {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

// isComparable reports whether v's dynamic type supports == without
// panicking (slice, map, and function values do not).
func isComparable(v interface{}) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}
