// ABOUTME: Auxiliary entities stored alongside conversations
// ABOUTME: Settings, images, files, knowledge records, quick phrases, memories
package models

import "time"

// Setting is one key/value pair in the settings or metadata table.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Image holds raw image bytes keyed by id. Dimension and type details live in
// the image_metadata table.
type Image struct {
	ID   string `json:"id"`
	MIME string `json:"mime,omitempty"`
	Data []byte `json:"data"`
}

// ImageMetadata describes a stored image without carrying its bytes.
type ImageMetadata struct {
	ID        string    `json:"id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// FileRecord tracks a file attached to a conversation.
type FileRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Ext       string    `json:"ext,omitempty"`
	Size      int64     `json:"size"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// KnowledgeBase is a reference to an externally-indexed knowledge collection.
type KnowledgeBase struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KnowledgeDocument is one document registered under a knowledge base.
type KnowledgeDocument struct {
	ID        string    `json:"id"`
	BaseID    string    `json:"base_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// QuickPhrase is a user-defined prompt snippet.
type QuickPhrase struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Memory is one persisted long-term memory entry.
type Memory struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
