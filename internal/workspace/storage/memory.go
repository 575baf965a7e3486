// Package storage provides the persistence backends for dayloop project
// documents: an in-memory store and an optional SQLite-backed store with a
// write-through in-memory cache.
//
// Thread Safety:
// All methods are thread-safe through RWMutex protection. Read operations
// use RLock for concurrent access, while write operations use exclusive
// Lock. Get/List methods return deep copies so callers can never mutate
// internal state by holding onto a returned pointer.
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/loomwright/dayloop/internal/types"
)

// MemoryStorage implements in-memory document storage with thread-safe,
// copy-on-read semantics.
type MemoryStorage struct {
	mu        sync.RWMutex
	documents map[string]*types.Document
	ordered   []*types.Document // newest UpdatedAt first
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		documents: make(map[string]*types.Document),
		ordered:   make([]*types.Document, 0, 16),
	}
}

// SaveDocument inserts or replaces a document, stamping UpdatedAt.
func (s *MemoryStorage) SaveDocument(doc *types.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}

	_, exists := s.documents[doc.ID]
	stored := deepCopyDocument(doc)
	s.documents[doc.ID] = stored

	if exists {
		for i, d := range s.ordered {
			if d.ID == doc.ID {
				s.ordered[i] = stored
				break
			}
		}
	} else {
		s.ordered = append(s.ordered, stored)
	}
	sort.Slice(s.ordered, func(i, j int) bool {
		return s.ordered[i].UpdatedAt.After(s.ordered[j].UpdatedAt)
	})
	return nil
}

// GetDocument retrieves a document by id (a deep copy, safe to mutate).
func (s *MemoryStorage) GetDocument(id string) (*types.Document, error) {
	s.mu.RLock()
	doc, exists := s.documents[id]
	s.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return deepCopyDocument(doc), nil
}

// ListDocuments returns every document, newest UpdatedAt first.
func (s *MemoryStorage) ListDocuments() ([]*types.Document, error) {
	s.mu.RLock()
	snapshot := make([]*types.Document, len(s.ordered))
	copy(snapshot, s.ordered)
	s.mu.RUnlock()

	out := make([]*types.Document, len(snapshot))
	for i, d := range snapshot {
		out[i] = deepCopyDocument(d)
	}
	return out, nil
}

// DeleteDocument removes a document by id.
func (s *MemoryStorage) DeleteDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[id]; !exists {
		return fmt.Errorf("document not found: %s", id)
	}
	delete(s.documents, id)
	for i, d := range s.ordered {
		if d.ID == id {
			s.ordered = append(s.ordered[:i], s.ordered[i+1:]...)
			break
		}
	}
	return nil
}

// deepCopyDocument returns an independent copy of doc via a JSON
// round-trip. The document graph is large and deeply nested (nodes,
// edges, loops, knowledge states, equivalence classes); a marshal/
// unmarshal round-trip is simpler and less error-prone than a hand-written
// field-by-field copy and this is not a hot path relative to the engine's
// in-memory components (daygraph, loopstore, equivalence), which do use
// hand-written deep copies on their hot paths.
func deepCopyDocument(doc *types.Document) *types.Document {
	data, err := json.Marshal(doc)
	if err != nil {
		// doc was constructed by this package's own types; a marshal
		// failure here means a non-serializable field was added without
		// updating this comment's assumption.
		panic(fmt.Sprintf("storage: document %q failed to marshal for deep copy: %v", doc.ID, err))
	}
	var out types.Document
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("storage: document %q failed to unmarshal for deep copy: %v", doc.ID, err))
	}
	return &out
}
