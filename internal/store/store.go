// Package store is an in-process document store used as the remote
// side during development and tests. It speaks the reference payload
// wire shape and supports selective reads via a requested key set.
package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store holds documents per class. Safe for concurrent use; the HTTP
// server in front of it handles requests in parallel.
type Store struct {
	mu      sync.RWMutex
	classes map[string]map[string]map[string]any
}

func New() *Store {
	return &Store{
		classes: make(map[string]map[string]map[string]any),
	}
}

// Put stores the full document for (class, id).
func (s *Store) Put(class, id string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.classes[class] == nil {
		s.classes[class] = make(map[string]map[string]any)
	}
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	s.classes[class][id] = doc
}

// Create mints an id for a new document.
func (s *Store) Create(class string, fields map[string]any) string {
	id := uuid.New().String()
	s.Put(class, id, fields)
	return id
}

// Get returns the document restricted to keys. A nil or empty key set
// returns the full document; the second return is the keys actually
// populated, nil when the full document came back.
func (s *Store) Get(class, id string, keys []string) (map[string]any, []string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.classes[class][id]
	if !ok {
		return nil, nil, false
	}

	if len(keys) == 0 {
		out := make(map[string]any, len(doc))
		for k, v := range doc {
			out[k] = v
		}
		return out, nil, true
	}

	out := make(map[string]any, len(keys))
	// non-nil even when nothing matched: an empty key set is a valid
	// selective response, not a full one
	populated := []string{}
	for _, k := range keys {
		if v, ok := doc[k]; ok {
			out[k] = v
			populated = append(populated, k)
		}
	}
	sort.Strings(populated)
	return out, populated, true
}

// List returns the sorted ids of a class.
func (s *Store) List(class string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.classes[class]))
	for id := range s.classes[class] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Counts returns the number of documents per class.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.classes))
	for class, docs := range s.classes {
		counts[class] = len(docs)
	}
	return counts
}
