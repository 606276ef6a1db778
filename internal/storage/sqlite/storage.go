// ABOUTME: Unified storage façade over all SQLite stores
// ABOUTME: Composite writes that span tables run inside one transaction
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/llmhouse/chatstore/internal/models"
)

// Storage manages all persistent conversation data. It is the only contact
// surface the rest of the application uses; the handle is constructed once at
// startup and passed in explicitly.
type Storage struct {
	db         *DB
	topics     *TopicStore
	messages   *MessageStore
	blocks     *BlockStore
	assistants *AssistantStore
	settings   *KVStore
	metadata   *KVStore
	images     *ImageStore
	files      *FileStore
	knowledge  *KnowledgeStore
	memories   *MemoryStore
	mu         sync.RWMutex
}

// Stats summarizes row counts across the core tables
type Stats struct {
	Topics     int `json:"topics"`
	Messages   int `json:"messages"`
	Blocks     int `json:"blocks"`
	Assistants int `json:"assistants"`
}

// NewStorage opens the default database path
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath())
}

// NewStorageWithPath opens a database at a custom path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:         db,
		topics:     NewTopicStore(db),
		messages:   NewMessageStore(db),
		blocks:     NewBlockStore(db),
		assistants: NewAssistantStore(db),
		settings:   NewSettingStore(db),
		metadata:   NewMetadataStore(db),
		images:     NewImageStore(db),
		files:      NewFileStore(db),
		knowledge:  NewKnowledgeStore(db),
		memories:   NewMemoryStore(db),
	}
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Store accessors for collaborators that only need simple reads and writes.

func (s *Storage) Topics() *TopicStore         { return s.topics }
func (s *Storage) Messages() *MessageStore     { return s.messages }
func (s *Storage) Blocks() *BlockStore         { return s.blocks }
func (s *Storage) Assistants() *AssistantStore { return s.assistants }
func (s *Storage) Settings() *KVStore          { return s.settings }
func (s *Storage) Metadata() *KVStore          { return s.metadata }
func (s *Storage) Images() *ImageStore         { return s.images }
func (s *Storage) Files() *FileStore           { return s.files }
func (s *Storage) Knowledge() *KnowledgeStore  { return s.knowledge }
func (s *Storage) Memories() *MemoryStore      { return s.memories }

// SaveTopic upserts a topic and records the ownership on its assistant when
// one is set.
func (s *Storage) SaveTopic(topic *models.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := topic.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	return s.db.WithTx(func(tx *sql.Tx) error {
		if err := saveTopic(tx, topic); err != nil {
			return err
		}
		if topic.AssistantID == "" {
			return nil
		}
		assistant, err := getAssistant(tx, topic.AssistantID)
		if err != nil || assistant == nil {
			return err
		}
		if assistant.HasTopic(topic.ID) {
			return nil
		}
		assistant.AddTopic(topic.ID)
		return saveAssistant(tx, assistant)
	})
}

// SaveMessage upserts a message and keeps the owning topic consistent: the
// message id is appended to the topic's ordered list if absent and the
// topic's recency fields follow the message timestamp. A message whose topic
// does not exist fails with ErrNotFound and writes nothing.
func (s *Storage) SaveMessage(msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithTx(func(tx *sql.Tx) error {
		return s.saveMessageTx(tx, msg)
	})
}

func (s *Storage) saveMessageTx(tx *sql.Tx, msg *models.Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	topic, err := getTopic(tx, msg.TopicID)
	if err != nil {
		return err
	}
	if topic == nil {
		return fmt.Errorf("%w: topic %s", ErrNotFound, msg.TopicID)
	}
	if err := saveMessage(tx, msg); err != nil {
		return err
	}
	topic.AppendMessage(msg.ID)
	if msg.CreatedAt.After(topic.LastMessageTime) {
		topic.LastMessageTime = msg.CreatedAt
	}
	return saveTopic(tx, topic)
}

// SaveMessageWithBlocks saves a message together with its content blocks in
// one transaction. Every block must belong to the message.
func (s *Storage) SaveMessageWithBlocks(msg *models.Message, blocks []models.MessageBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range blocks {
		if blocks[i].MessageID != msg.ID {
			return fmt.Errorf("%w: block %s does not belong to message %s", ErrConstraint, blocks[i].ID, msg.ID)
		}
	}
	return s.db.WithTx(func(tx *sql.Tx) error {
		for i := range blocks {
			msg.AppendBlock(blocks[i].ID)
		}
		if err := s.saveMessageTx(tx, msg); err != nil {
			return err
		}
		for i := range blocks {
			if err := saveBlock(tx, &blocks[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveBlock upserts one block and records it on its owning message. A block
// whose message does not exist fails with ErrNotFound.
func (s *Storage) SaveBlock(block *models.MessageBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithTx(func(tx *sql.Tx) error {
		return s.saveBlockTx(tx, block)
	})
}

// SaveBlocks upserts a batch of blocks in one transaction
func (s *Storage) SaveBlocks(blocks []models.MessageBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithTx(func(tx *sql.Tx) error {
		for i := range blocks {
			if err := s.saveBlockTx(tx, &blocks[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) saveBlockTx(tx *sql.Tx, block *models.MessageBlock) error {
	if err := block.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	msg, err := getMessage(tx, block.MessageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("%w: message %s", ErrNotFound, block.MessageID)
	}
	if err := saveBlock(tx, block); err != nil {
		return err
	}
	if msg.HasBlock(block.ID) {
		return nil
	}
	msg.AppendBlock(block.ID)
	return saveMessage(tx, msg)
}

// UpdateBlock applies a partial delta to an existing block. This is the
// persistence target of the write coalescer.
func (s *Storage) UpdateBlock(blockID string, delta models.BlockDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithTx(func(tx *sql.Tx) error {
		block, err := getBlock(tx, blockID)
		if err != nil {
			return err
		}
		if block == nil {
			return fmt.Errorf("%w: block %s", ErrNotFound, blockID)
		}
		block.Apply(delta)
		return saveBlock(tx, block)
	})
}

// MarkMessageError sets a message to error status, keeping whatever content
// was already durably written. Used when a streamed write terminally fails.
func (s *Storage) MarkMessageError(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("UPDATE messages SET status = ?, updated_at = ? WHERE id = ?",
		string(models.StatusError), time.Now().UTC(), messageID)
	return err
}

// DeleteMessage removes a message, its blocks, and the reference on its
// topic, then recomputes the topic's last message time. Deleting a missing
// message is a no-op.
func (s *Storage) DeleteMessage(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithTx(func(tx *sql.Tx) error {
		msg, err := getMessage(tx, messageID)
		if err != nil || msg == nil {
			return err
		}
		if err := deleteBlocksByMessage(tx, messageID); err != nil {
			return err
		}
		if err := deleteMessageRow(tx, messageID); err != nil {
			return err
		}

		topic, err := getTopic(tx, msg.TopicID)
		if err != nil || topic == nil {
			return err
		}
		topic.RemoveMessage(messageID)

		remaining, err := getMessagesByTopic(tx, topic.ID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			topic.LastMessageTime = remaining[len(remaining)-1].CreatedAt
		} else {
			topic.LastMessageTime = time.Now().UTC()
		}
		return saveTopic(tx, topic)
	})
}

// DeleteTopic removes a topic with all its messages and blocks, and scrubs
// the reference on the owning assistant. Deleting a missing topic is a no-op.
func (s *Storage) DeleteTopic(topicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithTx(func(tx *sql.Tx) error {
		return deleteTopicCascade(tx, topicID, true)
	})
}

func deleteTopicCascade(tx *sql.Tx, topicID string, scrubAssistant bool) error {
	topic, err := getTopic(tx, topicID)
	if err != nil || topic == nil {
		return err
	}

	msgs, err := getMessagesByTopic(tx, topicID)
	if err != nil {
		return err
	}
	for i := range msgs {
		if err := deleteBlocksByMessage(tx, msgs[i].ID); err != nil {
			return err
		}
	}
	if err := deleteMessagesByTopic(tx, topicID); err != nil {
		return err
	}
	if err := deleteTopicRow(tx, topicID); err != nil {
		return err
	}

	if !scrubAssistant || topic.AssistantID == "" {
		return nil
	}
	assistant, err := getAssistant(tx, topic.AssistantID)
	if err != nil || assistant == nil {
		return err
	}
	if !assistant.HasTopic(topicID) {
		return nil
	}
	assistant.RemoveTopic(topicID)
	return saveAssistant(tx, assistant)
}

// DeleteAssistant removes an assistant and cascades through every topic it
// owns, down to the blocks. Deleting a missing assistant is a no-op.
func (s *Storage) DeleteAssistant(assistantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithTx(func(tx *sql.Tx) error {
		assistant, err := getAssistant(tx, assistantID)
		if err != nil || assistant == nil {
			return err
		}
		for _, topicID := range assistant.TopicIDs {
			if err := deleteTopicCascade(tx, topicID, false); err != nil {
				return err
			}
		}
		return deleteAssistantRow(tx, assistantID)
	})
}

// GetStats returns row counts for the core tables
func (s *Storage) GetStats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{}
	counts := []struct {
		table string
		dest  *int
	}{
		{"topics", &stats.Topics},
		{"messages", &stats.Messages},
		{"message_blocks", &stats.Blocks},
		{"assistants", &stats.Assistants},
	}
	for _, c := range counts {
		if err := s.db.QueryRow("SELECT COUNT(1) FROM " + c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return stats, nil
}

// Clear truncates every table. Full app reset only; the schema version is
// kept so the database does not re-migrate.
func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithTx(func(tx *sql.Tx) error {
		for _, table := range allTables {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}
