// Package storage provides SQLite persistent storage implementation.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/loomwright/dayloop/internal/types"
)

// SQLiteStorage implements persistent document storage with SQLite plus a
// write-through in-memory cache for fast reads.
type SQLiteStorage struct {
	db    *sql.DB
	cache *MemoryStorage

	stmtUpsert *sql.Stmt
	stmtGet    *sql.Stmt
	stmtList   *sql.Stmt
	stmtDelete *sql.Stmt
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string, timeoutMs int) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	dsn := dbPath + fmt.Sprintf("?_busy_timeout=%d", timeoutMs)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with limited connections.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := configureSQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure SQLite: %w", err)
	}

	if err := initializeSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &SQLiteStorage{
		db:    db,
		cache: NewMemoryStorage(),
	}

	if err := s.prepareStatements(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	if err := s.warmCache(); err != nil {
		log.Printf("Warning: failed to warm cache: %v", err)
	}

	log.Printf("SQLite storage initialized successfully at %s", dbPath)
	return s, nil
}

func (s *SQLiteStorage) prepareStatements() error {
	var err error

	s.stmtUpsert, err = s.db.Prepare(`
		INSERT INTO documents (id, name, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			data=excluded.data,
			updated_at=excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert document: %w", err)
	}

	s.stmtGet, err = s.db.Prepare(`SELECT data FROM documents WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare get document: %w", err)
	}

	s.stmtList, err = s.db.Prepare(`SELECT data FROM documents ORDER BY updated_at DESC`)
	if err != nil {
		return fmt.Errorf("prepare list documents: %w", err)
	}

	s.stmtDelete, err = s.db.Prepare(`DELETE FROM documents WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare delete document: %w", err)
	}

	return nil
}

// warmCache loads every document into memory on startup.
func (s *SQLiteStorage) warmCache() error {
	rows, err := s.stmtList.Query()
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	count := 0
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			log.Printf("Warning: failed to scan document: %v", err)
			continue
		}
		var doc types.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			log.Printf("Warning: failed to unmarshal document: %v", err)
			continue
		}
		if err := s.cache.SaveDocument(&doc); err != nil {
			log.Printf("Warning: failed to cache document: %v", err)
		}
		count++
	}

	log.Printf("Warmed cache with %d documents", count)
	return nil
}

// SaveDocument persists a document to the database and the cache.
func (s *SQLiteStorage) SaveDocument(doc *types.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}

	now := time.Now()
	doc.UpdatedAt = now
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.stmtUpsert.Exec(doc.ID, doc.Name, data, doc.CreatedAt.Unix(), doc.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return s.cache.SaveDocument(doc)
}

// GetDocument retrieves a document by id (cache-first).
func (s *SQLiteStorage) GetDocument(id string) (*types.Document, error) {
	if doc, err := s.cache.GetDocument(id); err == nil {
		return doc, nil
	}

	var data []byte
	err := s.stmtGet.QueryRow(id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	if err := s.cache.SaveDocument(&doc); err != nil {
		log.Printf("Warning: failed to warm cache with document: %v", err)
	}
	return s.cache.GetDocument(doc.ID)
}

// ListDocuments returns every document, newest UpdatedAt first. It always
// reads from the database; the in-memory cache is not consulted.
func (s *SQLiteStorage) ListDocuments() ([]*types.Document, error) {
	rows, err := s.stmtList.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*types.Document, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			log.Printf("Warning: failed to scan document: %v", err)
			continue
		}
		var doc types.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			log.Printf("Warning: failed to unmarshal document: %v", err)
			continue
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

// DeleteDocument removes a document from the database and the cache.
func (s *SQLiteStorage) DeleteDocument(id string) error {
	res, err := s.stmtDelete.Exec(id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm document deletion: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document not found: %s", id)
	}

	if err := s.cache.DeleteDocument(id); err != nil {
		log.Printf("Warning: failed to evict document from cache: %v", err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLiteStorage) Close() error {
	if s.stmtUpsert != nil {
		_ = s.stmtUpsert.Close()
	}
	if s.stmtGet != nil {
		_ = s.stmtGet.Close()
	}
	if s.stmtList != nil {
		_ = s.stmtList.Close()
	}
	if s.stmtDelete != nil {
		_ = s.stmtDelete.Close()
	}
	return s.db.Close()
}
