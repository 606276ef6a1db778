// ABOUTME: Tests for the versioned migration pipeline
// ABOUTME: Verifies legacy databases migrate without losing conversation data
package sqlite

import (
	"database/sql"
	"encoding/json"
	"testing"
)

// seedLegacyV1 builds a database as version 1 shipped it: topics with an
// embedded messages array, no messages or message_blocks tables.
func seedLegacyV1(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	conn.SetMaxOpenConns(1)

	stmts := []string{
		`CREATE TABLE schema_version (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)`,
		schemaV1,
		`INSERT INTO schema_version (version, name, applied_at) VALUES (1, 'initial_schema', datetime('now'))`,
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("seed statement failed: %v", err)
		}
	}

	embedded := `[
		{"id": "m1", "role": "user", "content": "What is Go?", "created_at": "2024-01-01T10:00:00Z", "updated_at": "2024-01-01T10:00:00Z"},
		{"id": "m2", "role": "assistant", "status": "success", "content": "A programming language.", "created_at": "2024-01-01T10:00:05Z", "updated_at": "2024-01-01T10:00:05Z"}
	]`
	if _, err := conn.Exec(`
		INSERT INTO topics (id, name, assistant_id, messages) VALUES ('t1', 'Go questions', 'a1', ?)
	`, embedded); err != nil {
		t.Fatalf("seed topic failed: %v", err)
	}
	if _, err := conn.Exec(`
		INSERT INTO assistants (id, name, topic_ids) VALUES ('a1', 'Tutor', '["t1"]')
	`); err != nil {
		t.Fatalf("seed assistant failed: %v", err)
	}

	return conn
}

func TestApplyMigrations_FromLegacyV1(t *testing.T) {
	conn := seedLegacyV1(t)
	defer func() { _ = conn.Close() }()

	if err := ApplyMigrations(conn); err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}

	version, err := CurrentVersion(conn)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("version = %d, want %d", version, SchemaVersion)
	}

	// Embedded messages became rows
	var msgCount int
	if err := conn.QueryRow("SELECT COUNT(1) FROM messages WHERE topic_id = 't1'").Scan(&msgCount); err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if msgCount != 2 {
		t.Errorf("messages = %d, want 2", msgCount)
	}

	// Topic id list follows the embedded order
	var idsJSON string
	if err := conn.QueryRow("SELECT message_ids FROM topics WHERE id = 't1'").Scan(&idsJSON); err != nil {
		t.Fatalf("read message_ids: %v", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
		t.Fatalf("parse message_ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "m1" || ids[1] != "m2" {
		t.Errorf("message_ids = %v, want [m1 m2]", ids)
	}

	// Inline content became main_text blocks with deterministic ids
	var content string
	if err := conn.QueryRow("SELECT content FROM message_blocks WHERE id = 'm2_main'").Scan(&content); err != nil {
		t.Fatalf("read block: %v", err)
	}
	if content != "A programming language." {
		t.Errorf("block content = %q", content)
	}

	var blockIDsJSON string
	if err := conn.QueryRow("SELECT block_ids FROM messages WHERE id = 'm1'").Scan(&blockIDsJSON); err != nil {
		t.Fatalf("read block_ids: %v", err)
	}
	var blockIDs []string
	if err := json.Unmarshal([]byte(blockIDsJSON), &blockIDs); err != nil {
		t.Fatalf("parse block_ids: %v", err)
	}
	if len(blockIDs) != 1 || blockIDs[0] != "m1_main" {
		t.Errorf("block_ids = %v, want [m1_main]", blockIDs)
	}

	// The defaulted role and status survived normalization
	var role, status string
	if err := conn.QueryRow("SELECT role, status FROM messages WHERE id = 'm1'").Scan(&role, &status); err != nil {
		t.Fatalf("read message: %v", err)
	}
	if role != "user" || status != "success" {
		t.Errorf("role=%q status=%q, want user/success", role, status)
	}

	// Legacy columns are gone from the final layout
	if rows, err := conn.Query("SELECT messages FROM topics LIMIT 1"); err == nil {
		rows.Close()
		t.Error("topics.messages column should be dropped at v3")
	}
	if rows, err := conn.Query("SELECT content FROM messages LIMIT 1"); err == nil {
		rows.Close()
		t.Error("messages.content column should be dropped at v3")
	}
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	conn := seedLegacyV1(t)
	defer func() { _ = conn.Close() }()

	if err := ApplyMigrations(conn); err != nil {
		t.Fatalf("first ApplyMigrations() error = %v", err)
	}
	if err := ApplyMigrations(conn); err != nil {
		t.Fatalf("second ApplyMigrations() error = %v", err)
	}

	var msgCount, blockCount int
	if err := conn.QueryRow("SELECT COUNT(1) FROM messages").Scan(&msgCount); err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if err := conn.QueryRow("SELECT COUNT(1) FROM message_blocks").Scan(&blockCount); err != nil {
		t.Fatalf("count blocks: %v", err)
	}
	if msgCount != 2 || blockCount != 2 {
		t.Errorf("messages=%d blocks=%d, want 2/2 after re-run", msgCount, blockCount)
	}
}

func TestApplyMigrations_FreshDatabase(t *testing.T) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	conn.SetMaxOpenConns(1)
	defer func() { _ = conn.Close() }()

	if err := ApplyMigrations(conn); err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}

	version, err := CurrentVersion(conn)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("version = %d, want %d", version, SchemaVersion)
	}

	// Every current table exists
	for _, table := range allTables {
		var count int
		if err := conn.QueryRow("SELECT COUNT(1) FROM " + table).Scan(&count); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}
