// ABOUTME: Knowledge base and document reference storage
// ABOUTME: Indexing and search belong to the external knowledge service
package sqlite

import (
	"database/sql"

	"github.com/llmhouse/chatstore/internal/models"
)

// KnowledgeStore handles knowledge base and document persistence
type KnowledgeStore struct {
	db *DB
}

// NewKnowledgeStore creates a new KnowledgeStore
func NewKnowledgeStore(db *DB) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

// SaveBase upserts a knowledge base
func (s *KnowledgeStore) SaveBase(kb *models.KnowledgeBase) error {
	_, err := s.db.Exec(`
		INSERT INTO knowledge_bases (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			updated_at = excluded.updated_at
	`, kb.ID, kb.Name, kb.Description, kb.CreatedAt, kb.UpdatedAt)
	return err
}

// GetBase retrieves a knowledge base by ID, (nil, nil) when absent
func (s *KnowledgeStore) GetBase(baseID string) (*models.KnowledgeBase, error) {
	var (
		kb   models.KnowledgeBase
		desc sql.NullString
	)
	err := s.db.QueryRow("SELECT id, name, description, created_at, updated_at FROM knowledge_bases WHERE id = ?", baseID).
		Scan(&kb.ID, &kb.Name, &desc, &kb.CreatedAt, &kb.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	kb.Description = desc.String
	return &kb, nil
}

// GetAllBases returns every knowledge base
func (s *KnowledgeStore) GetAllBases() ([]models.KnowledgeBase, error) {
	rows, err := s.db.Query("SELECT id, name, description, created_at, updated_at FROM knowledge_bases ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var bases []models.KnowledgeBase
	for rows.Next() {
		var (
			kb   models.KnowledgeBase
			desc sql.NullString
		)
		if err := rows.Scan(&kb.ID, &kb.Name, &desc, &kb.CreatedAt, &kb.UpdatedAt); err != nil {
			return nil, err
		}
		kb.Description = desc.String
		bases = append(bases, kb)
	}
	return bases, rows.Err()
}

// DeleteBase removes a knowledge base and its documents
func (s *KnowledgeStore) DeleteBase(baseID string) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM knowledge_documents WHERE base_id = ?", baseID); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM knowledge_bases WHERE id = ?", baseID)
		return err
	})
}

// SaveDocument upserts a document under a knowledge base
func (s *KnowledgeStore) SaveDocument(doc *models.KnowledgeDocument) error {
	_, err := s.db.Exec(`
		INSERT INTO knowledge_documents (id, base_id, content, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			base_id = excluded.base_id,
			content = excluded.content
	`, doc.ID, doc.BaseID, doc.Content, doc.CreatedAt)
	return err
}

// GetDocumentsByBase retrieves all documents of one base
func (s *KnowledgeStore) GetDocumentsByBase(baseID string) ([]models.KnowledgeDocument, error) {
	rows, err := s.db.Query("SELECT id, base_id, content, created_at FROM knowledge_documents WHERE base_id = ? ORDER BY created_at ASC", baseID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []models.KnowledgeDocument
	for rows.Next() {
		var (
			doc     models.KnowledgeDocument
			content sql.NullString
		)
		if err := rows.Scan(&doc.ID, &doc.BaseID, &content, &doc.CreatedAt); err != nil {
			return nil, err
		}
		doc.Content = content.String
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a single document
func (s *KnowledgeStore) DeleteDocument(docID string) error {
	_, err := s.db.Exec("DELETE FROM knowledge_documents WHERE id = ?", docID)
	return err
}
