// ABOUTME: Ordered, versioned migration pipeline for the conversation store
// ABOUTME: Each step runs in its own transaction; failure aborts the open
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migration struct {
	version int
	name    string
	ddl     string
	// reshape moves data into the new layout after the DDL has run. It
	// executes inside the same transaction as the DDL and the version
	// bookkeeping, so a failed step leaves no trace.
	reshape func(tx *sql.Tx) error
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		ddl:     schemaV1,
	},
	{
		version: 2,
		name:    "normalized_messages",
		ddl:     schemaV2,
		reshape: splitEmbeddedMessages,
	},
	{
		version: 3,
		name:    "message_blocks",
		ddl:     schemaV3,
		reshape: extractContentBlocks,
	},
}

// ApplyMigrations brings the database to SchemaVersion, applying pending
// steps strictly in increasing order. Every returned error wraps
// ErrMigration; callers must treat it as fatal and refuse to serve.
func ApplyMigrations(conn *sql.DB) error {
	if _, err := conn.Exec(`
CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TEXT NOT NULL
);`); err != nil {
		return fmt.Errorf("%w: ensure schema_version table: %v", ErrMigration, err)
	}

	for _, m := range migrations {
		applied, err := migrationApplied(conn, m.version)
		if err != nil {
			return fmt.Errorf("%w: check migration %d: %v", ErrMigration, m.version, err)
		}
		if applied {
			continue
		}
		if err := applyMigration(conn, m); err != nil {
			return fmt.Errorf("%w: apply migration %d (%s): %v", ErrMigration, m.version, m.name, err)
		}
	}

	return nil
}

// CurrentVersion reports the highest committed schema version, 0 for a
// database that has never been migrated.
func CurrentVersion(conn *sql.DB) (int, error) {
	var version sql.NullInt64
	err := conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

func migrationApplied(conn *sql.DB, version int) (bool, error) {
	var count int
	if err := conn.QueryRow(
		"SELECT COUNT(1) FROM schema_version WHERE version = ?",
		version,
	).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyMigration(conn *sql.DB, m migration) error {
	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(m.ddl); err != nil {
		return err
	}
	if m.reshape != nil {
		if err := m.reshape(tx); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, datetime('now'))",
		m.version, m.name,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// embeddedMessage is the shape of one entry in the v1 denormalized array.
type embeddedMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	ModelID   string    `json:"model_id"`
	AskID     string    `json:"ask_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// splitEmbeddedMessages (v1 -> v2) turns each topic's embedded messages array
// into rows of the new messages table and records the id order on the topic.
// The embedded array itself stays for v2 readers; v3 removes it.
func splitEmbeddedMessages(tx *sql.Tx) error {
	rows, err := tx.Query("SELECT id, assistant_id, messages FROM topics WHERE messages IS NOT NULL AND messages != ''")
	if err != nil {
		return err
	}

	type topicMessages struct {
		topicID     string
		assistantID string
		embedded    []embeddedMessage
	}
	var work []topicMessages

	for rows.Next() {
		var (
			topicID     string
			assistantID sql.NullString
			raw         string
		)
		if err := rows.Scan(&topicID, &assistantID, &raw); err != nil {
			_ = rows.Close()
			return err
		}
		var embedded []embeddedMessage
		if err := json.Unmarshal([]byte(raw), &embedded); err != nil {
			_ = rows.Close()
			return fmt.Errorf("topic %s has unreadable embedded messages: %w", topicID, err)
		}
		work = append(work, topicMessages{topicID, assistantID.String, embedded})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, w := range work {
		ids := make([]string, 0, len(w.embedded))
		for _, em := range w.embedded {
			if em.ID == "" {
				continue
			}
			if em.Role == "" {
				em.Role = "user"
			}
			if em.Status == "" {
				em.Status = "success"
			}
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO messages (id, topic_id, assistant_id, role, status, model_id, ask_id, content, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, em.ID, w.topicID, w.assistantID, em.Role, em.Status, em.ModelID, em.AskID, em.Content, em.CreatedAt, em.UpdatedAt); err != nil {
				return err
			}
			ids = append(ids, em.ID)
		}
		idsJSON, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		if _, err := tx.Exec("UPDATE topics SET message_ids = ? WHERE id = ?", string(idsJSON), w.topicID); err != nil {
			return err
		}
	}

	log.Printf("[migrate] v2: normalized embedded messages for %d topics", len(work))
	return nil
}

// extractContentBlocks (v2 -> v3) moves inline message content into
// main_text blocks, then rebuilds the topics and messages tables without the
// legacy columns. SQLite cannot redefine columns in place, so both tables
// are copied into their final shape and swapped.
func extractContentBlocks(tx *sql.Tx) error {
	rows, err := tx.Query("SELECT id, content, created_at, updated_at FROM messages WHERE content IS NOT NULL AND content != ''")
	if err != nil {
		return err
	}

	type inlineContent struct {
		messageID string
		content   string
		createdAt time.Time
		updatedAt time.Time
	}
	var work []inlineContent

	for rows.Next() {
		var w inlineContent
		if err := rows.Scan(&w.messageID, &w.content, &w.createdAt, &w.updatedAt); err != nil {
			_ = rows.Close()
			return err
		}
		work = append(work, w)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, w := range work {
		// Deterministic block id keeps a re-run from duplicating blocks.
		blockID := w.messageID + "_main"
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO message_blocks (id, message_id, type, status, content, created_at, updated_at)
			VALUES (?, ?, 'main_text', 'success', ?, ?, ?)
		`, blockID, w.messageID, w.content, w.createdAt, w.updatedAt); err != nil {
			return err
		}
		blockIDs, err := json.Marshal([]string{blockID})
		if err != nil {
			return err
		}
		if _, err := tx.Exec("UPDATE messages SET block_ids = ? WHERE id = ?", string(blockIDs), w.messageID); err != nil {
			return err
		}
	}

	swaps := []string{
		`CREATE TABLE topics_next (
			id TEXT PRIMARY KEY,
			name TEXT,
			assistant_id TEXT,
			prompt TEXT,
			message_ids TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_message_time DATETIME DEFAULT CURRENT_TIMESTAMP,
			sort_key INTEGER DEFAULT 0
		)`,
		`INSERT INTO topics_next (id, name, assistant_id, prompt, message_ids, created_at, updated_at, last_message_time, sort_key)
			SELECT id, name, assistant_id, prompt, message_ids, created_at, updated_at, last_message_time, sort_key FROM topics`,
		`DROP TABLE topics`,
		`ALTER TABLE topics_next RENAME TO topics`,
		`CREATE INDEX IF NOT EXISTS idx_topics_assistant ON topics(assistant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_sort ON topics(sort_key)`,
		`CREATE TABLE messages_next (
			id TEXT PRIMARY KEY,
			topic_id TEXT NOT NULL,
			assistant_id TEXT,
			role TEXT NOT NULL DEFAULT 'user',
			status TEXT NOT NULL DEFAULT 'success',
			model_id TEXT,
			ask_id TEXT,
			block_ids TEXT,
			versions TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`INSERT INTO messages_next (id, topic_id, assistant_id, role, status, model_id, ask_id, block_ids, versions, created_at, updated_at)
			SELECT id, topic_id, assistant_id, role, status, model_id, ask_id, block_ids, versions, created_at, updated_at FROM messages`,
		`DROP TABLE messages`,
		`ALTER TABLE messages_next RENAME TO messages`,
		`CREATE INDEX IF NOT EXISTS idx_messages_topic ON messages(topic_id)`,
	}
	for _, stmt := range swaps {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	log.Printf("[migrate] v3: extracted %d main_text blocks", len(work))
	return nil
}
