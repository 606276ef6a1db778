// ABOUTME: MessageBlock storage operations for SQLite
// ABOUTME: Blocks are deep-copied on save so caller mutation cannot leak in
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/llmhouse/chatstore/internal/models"
)

// BlockStore handles message block persistence
type BlockStore struct {
	db *DB
}

// NewBlockStore creates a new BlockStore
func NewBlockStore(db *DB) *BlockStore {
	return &BlockStore{db: db}
}

const blockColumns = "id, message_id, type, status, content, metadata, created_at, updated_at"

// Save upserts a block row. The block is deep-copied first; a payload that
// cannot be serialized is rejected with ErrSerialization before any write.
// Message bookkeeping lives in the storage façade.
func (s *BlockStore) Save(block *models.MessageBlock) error {
	return saveBlock(s.db, block)
}

func saveBlock(q querier, block *models.MessageBlock) error {
	copied, err := block.Clone()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	metaJSON := ""
	if copied.Metadata != nil {
		metaJSON, err = marshalJSON(copied.Metadata)
		if err != nil {
			return err
		}
	}

	_, err = q.Exec(`
		INSERT INTO message_blocks (id, message_id, type, status, content, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			message_id = excluded.message_id,
			type = excluded.type,
			status = excluded.status,
			content = excluded.content,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, copied.ID, copied.MessageID, string(copied.Type), string(copied.Status),
		copied.Content, metaJSON, copied.CreatedAt, copied.UpdatedAt)

	return err
}

// Get retrieves a block by ID, (nil, nil) when absent
func (s *BlockStore) Get(blockID string) (*models.MessageBlock, error) {
	return getBlock(s.db, blockID)
}

func getBlock(q querier, blockID string) (*models.MessageBlock, error) {
	row := q.QueryRow("SELECT "+blockColumns+" FROM message_blocks WHERE id = ?", blockID)
	block, err := scanBlockRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return block, nil
}

// GetByMessage retrieves all blocks of one message in creation order
func (s *BlockStore) GetByMessage(messageID string) ([]models.MessageBlock, error) {
	return getBlocksByMessage(s.db, messageID)
}

func getBlocksByMessage(q querier, messageID string) ([]models.MessageBlock, error) {
	rows, err := q.Query("SELECT "+blockColumns+" FROM message_blocks WHERE message_id = ? ORDER BY created_at ASC", messageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanBlocks(rows)
}

// GetAll retrieves every block in creation order
func (s *BlockStore) GetAll() ([]models.MessageBlock, error) {
	rows, err := s.db.Query("SELECT " + blockColumns + " FROM message_blocks ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanBlocks(rows)
}

// BulkGet retrieves blocks by id set; missing ids are absent from the result
func (s *BlockStore) BulkGet(ids []string) ([]models.MessageBlock, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		"SELECT "+blockColumns+" FROM message_blocks WHERE id IN ("+idPlaceholders(len(ids))+")",
		idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanBlocks(rows)
}

// GetByMessages retrieves the blocks of a message id set, grouped by owner.
// Used by export and the read projection to avoid per-message queries.
func (s *BlockStore) GetByMessages(messageIDs []string) (map[string][]models.MessageBlock, error) {
	if len(messageIDs) == 0 {
		return map[string][]models.MessageBlock{}, nil
	}
	rows, err := s.db.Query(
		"SELECT "+blockColumns+" FROM message_blocks WHERE message_id IN ("+idPlaceholders(len(messageIDs))+") ORDER BY created_at ASC",
		idArgs(messageIDs)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	blocks, err := scanBlocks(rows)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]models.MessageBlock, len(messageIDs))
	for _, b := range blocks {
		grouped[b.MessageID] = append(grouped[b.MessageID], b)
	}
	return grouped, nil
}

// GetByType retrieves all blocks of one content type
func (s *BlockStore) GetByType(blockType models.BlockType) ([]models.MessageBlock, error) {
	rows, err := s.db.Query("SELECT "+blockColumns+" FROM message_blocks WHERE type = ? ORDER BY created_at ASC", string(blockType))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanBlocks(rows)
}

// BulkSave upserts a set of blocks inside one transaction
func (s *BlockStore) BulkSave(blocks []models.MessageBlock) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		for i := range blocks {
			if err := saveBlock(tx, &blocks[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// BulkDelete removes a set of blocks by id
func (s *BlockStore) BulkDelete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(
		"DELETE FROM message_blocks WHERE id IN ("+idPlaceholders(len(ids))+")",
		idArgs(ids)...)
	return err
}

// Delete removes a single block
func (s *BlockStore) Delete(blockID string) error {
	_, err := s.db.Exec("DELETE FROM message_blocks WHERE id = ?", blockID)
	return err
}

func deleteBlocksByMessage(q querier, messageID string) error {
	_, err := q.Exec("DELETE FROM message_blocks WHERE message_id = ?", messageID)
	return err
}

// Count returns the number of stored blocks
func (s *BlockStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(1) FROM message_blocks").Scan(&n)
	return n, err
}

func scanBlockRow(scan func(dest ...interface{}) error) (*models.MessageBlock, error) {
	var (
		block     models.MessageBlock
		blockType string
		status    string
		content   sql.NullString
		metaJSON  sql.NullString
	)
	err := scan(&block.ID, &block.MessageID, &blockType, &status, &content,
		&metaJSON, &block.CreatedAt, &block.UpdatedAt)
	if err != nil {
		return nil, err
	}
	block.Type = models.BlockType(blockType)
	block.Status = models.BlockStatus(status)
	block.Content = content.String
	block.Metadata = scanMap(metaJSON)
	return &block, nil
}

func scanBlocks(rows *sql.Rows) ([]models.MessageBlock, error) {
	var blocks []models.MessageBlock
	for rows.Next() {
		block, err := scanBlockRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *block)
	}
	return blocks, rows.Err()
}
