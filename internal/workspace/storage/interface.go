package storage

import "github.com/loomwright/dayloop/internal/types"

// DocumentRepository persists and retrieves whole project artifacts (spec
// §6's persisted document), the unit of storage for both backends.
type DocumentRepository interface {
	SaveDocument(doc *types.Document) error
	GetDocument(id string) (*types.Document, error)
	ListDocuments() ([]*types.Document, error)
	DeleteDocument(id string) error
}

// Storage is the full persistence interface a workspace depends on.
type Storage interface {
	DocumentRepository
}

// Verify MemoryStorage implements Storage interface
var _ Storage = (*MemoryStorage)(nil)
