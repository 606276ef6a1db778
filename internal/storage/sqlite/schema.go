// ABOUTME: Versioned schema registry for the conversation store
// ABOUTME: Pure data; each version lists the DDL introduced at that version
package sqlite

// SchemaVersion is the schema version this build expects on disk.
const SchemaVersion = 3

// Version 1: topics carry a denormalized `messages` JSON array, the layout
// the earliest releases shipped with. Assistants and settings exist from the
// start.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS topics (
    id TEXT PRIMARY KEY,
    name TEXT,
    assistant_id TEXT,
    prompt TEXT,
    messages TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    last_message_time DATETIME DEFAULT CURRENT_TIMESTAMP,
    sort_key INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS assistants (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    prompt TEXT,
    topic_ids TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_topics_assistant ON topics(assistant_id);
CREATE INDEX IF NOT EXISTS idx_topics_sort ON topics(sort_key);
`

// Version 2: messages get their own table with a secondary index on topic_id.
// Content stays inline on the message row; topics keep the embedded array for
// readers that have not been updated yet. The accompanying data step splits
// each topic's embedded array into rows and fills message_ids.
const schemaV2 = `
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    topic_id TEXT NOT NULL,
    assistant_id TEXT,
    role TEXT NOT NULL DEFAULT 'user',
    status TEXT NOT NULL DEFAULT 'success',
    model_id TEXT,
    ask_id TEXT,
    content TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

ALTER TABLE topics ADD COLUMN message_ids TEXT;

CREATE INDEX IF NOT EXISTS idx_messages_topic ON messages(topic_id);
`

// Version 3: content moves into typed message_blocks (secondary index on
// message_id), the auxiliary tables arrive, and the embedded array on topics
// is dropped for good; the legacy view is projected at read time instead.
// Referential integrity across topics/messages/blocks is enforced by the
// storage engine, not by SQL foreign keys, so repair can observe and clean
// dangling rows from older databases and imports.
const schemaV3 = `
CREATE TABLE IF NOT EXISTS message_blocks (
    id TEXT PRIMARY KEY,
    message_id TEXT NOT NULL,
    type TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'success',
    content TEXT,
    metadata TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

ALTER TABLE messages ADD COLUMN block_ids TEXT;
ALTER TABLE messages ADD COLUMN versions TEXT;

CREATE TABLE IF NOT EXISTS images (
    id TEXT PRIMARY KEY,
    mime TEXT,
    data BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS image_metadata (
    id TEXT PRIMARY KEY,
    width INTEGER DEFAULT 0,
    height INTEGER DEFAULT 0,
    size INTEGER DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS files (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    path TEXT NOT NULL,
    ext TEXT,
    size INTEGER DEFAULT 0,
    count INTEGER DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS knowledge_bases (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS knowledge_documents (
    id TEXT PRIMARY KEY,
    base_id TEXT NOT NULL,
    content TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS quick_phrases (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS memories (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_blocks_message ON message_blocks(message_id);
CREATE INDEX IF NOT EXISTS idx_blocks_type ON message_blocks(type);
CREATE INDEX IF NOT EXISTS idx_documents_base ON knowledge_documents(base_id);
`

// allTables lists every table of the current version, used by Clear and by
// full-dump export. Order matters for Clear: children before owners.
var allTables = []string{
	"message_blocks",
	"messages",
	"topics",
	"assistants",
	"settings",
	"metadata",
	"images",
	"image_metadata",
	"files",
	"knowledge_bases",
	"knowledge_documents",
	"quick_phrases",
	"memories",
}
