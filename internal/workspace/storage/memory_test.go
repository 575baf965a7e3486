package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/loomwright/dayloop/internal/types"
)

func sampleDocument(id, name string) *types.Document {
	return &types.Document{
		ID:   id,
		Name: name,
		Graph: types.DocumentGraph{
			ID:          "graph-" + id,
			Name:        "graph for " + name,
			StartNodeID: "n1",
			Nodes:       []*types.Node{{ID: "n1", Label: "start"}},
		},
		Settings: map[string]string{"tone": "wry"},
	}
}

func TestNewMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()

	if s == nil {
		t.Fatal("NewMemoryStorage returned nil")
	}
	if s.documents == nil {
		t.Error("documents map not initialized")
	}
	if s.ordered == nil {
		t.Error("ordered slice not initialized")
	}
}

func TestSaveAndGetDocument(t *testing.T) {
	s := NewMemoryStorage()
	doc := sampleDocument("doc-1", "First Loop")

	if err := s.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}

	got, err := s.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.Name != "First Loop" {
		t.Errorf("Name = %v, want First Loop", got.Name)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped on first save")
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be stamped")
	}
}

func TestSaveDocumentRequiresID(t *testing.T) {
	s := NewMemoryStorage()
	err := s.SaveDocument(&types.Document{Name: "no id"})
	if err == nil {
		t.Error("expected error for document without id")
	}
}

func TestSaveDocumentPreservesCreatedAtOnUpdate(t *testing.T) {
	s := NewMemoryStorage()
	doc := sampleDocument("doc-1", "v1")
	if err := s.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	first, _ := s.GetDocument("doc-1")
	createdAt := first.CreatedAt

	time.Sleep(2 * time.Millisecond)
	update := sampleDocument("doc-1", "v2")
	update.CreatedAt = createdAt
	if err := s.SaveDocument(update); err != nil {
		t.Fatalf("SaveDocument() update error = %v", err)
	}

	second, _ := s.GetDocument("doc-1")
	if !second.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt changed on update: got %v, want %v", second.CreatedAt, createdAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Error("UpdatedAt should advance on update")
	}
	if second.Name != "v2" {
		t.Errorf("Name = %v, want v2", second.Name)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	s := NewMemoryStorage()
	if _, err := s.GetDocument("missing"); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestGetDocumentReturnsDeepCopy(t *testing.T) {
	s := NewMemoryStorage()
	doc := sampleDocument("doc-1", "orig")
	if err := s.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}

	got, err := s.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	got.Name = "mutated"
	got.Graph.Nodes[0].Label = "mutated node"

	again, _ := s.GetDocument("doc-1")
	if again.Name != "orig" {
		t.Error("mutating a returned document leaked into storage")
	}
	if again.Graph.Nodes[0].Label != "start" {
		t.Error("mutating a returned document's graph leaked into storage")
	}
}

func TestListDocumentsOrderedNewestFirst(t *testing.T) {
	s := NewMemoryStorage()
	if err := s.SaveDocument(sampleDocument("doc-1", "one")); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := s.SaveDocument(sampleDocument("doc-2", "two")); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := s.SaveDocument(sampleDocument("doc-3", "three")); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}

	docs, err := s.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("len(docs) = %d, want 3", len(docs))
	}
	if docs[0].ID != "doc-3" || docs[1].ID != "doc-2" || docs[2].ID != "doc-1" {
		t.Errorf("order = %v, %v, %v; want doc-3, doc-2, doc-1", docs[0].ID, docs[1].ID, docs[2].ID)
	}
}

func TestListDocumentsReordersOnUpdate(t *testing.T) {
	s := NewMemoryStorage()
	if err := s.SaveDocument(sampleDocument("doc-1", "one")); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := s.SaveDocument(sampleDocument("doc-2", "two")); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := s.SaveDocument(sampleDocument("doc-1", "one updated")); err != nil {
		t.Fatalf("SaveDocument() update error = %v", err)
	}

	docs, err := s.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if docs[0].ID != "doc-1" {
		t.Errorf("docs[0].ID = %v, want doc-1 (most recently updated)", docs[0].ID)
	}
}

func TestDeleteDocument(t *testing.T) {
	s := NewMemoryStorage()
	if err := s.SaveDocument(sampleDocument("doc-1", "one")); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}

	if err := s.DeleteDocument("doc-1"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}

	if _, err := s.GetDocument("doc-1"); err == nil {
		t.Error("expected error getting deleted document")
	}
	docs, _ := s.ListDocuments()
	if len(docs) != 0 {
		t.Errorf("len(docs) = %d, want 0 after delete", len(docs))
	}
}

func TestDeleteDocumentNotFound(t *testing.T) {
	s := NewMemoryStorage()
	if err := s.DeleteDocument("missing"); err == nil {
		t.Error("expected error deleting missing document")
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	s := NewMemoryStorage()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "doc-concurrent"
			_ = s.SaveDocument(sampleDocument(id, "concurrent"))
			_, _ = s.GetDocument(id)
			_, _ = s.ListDocuments()
		}(i)
	}
	wg.Wait()

	if _, err := s.GetDocument("doc-concurrent"); err != nil {
		t.Fatalf("GetDocument() error after concurrent writes = %v", err)
	}
}

func TestMemoryStorageImplementsStorage(t *testing.T) {
	var _ Storage = NewMemoryStorage()
}
