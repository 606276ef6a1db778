// ABOUTME: MessageBlock is one typed unit of content belonging to a message
// ABOUTME: Blocks are mutated in place while streaming, never recreated
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// BlockType identifies the kind of content a block carries.
type BlockType string

const (
	BlockMainText BlockType = "main_text"
	BlockThinking BlockType = "thinking"
	BlockImage    BlockType = "image"
	BlockFile     BlockType = "file"
	BlockCode     BlockType = "code"
	BlockTool     BlockType = "tool"
	BlockError    BlockType = "error"
	BlockCitation BlockType = "citation"
)

// BlockStatus mirrors the message lifecycle for individual blocks.
type BlockStatus string

const (
	BlockPending   BlockStatus = "pending"
	BlockStreaming BlockStatus = "streaming"
	BlockSuccess   BlockStatus = "success"
	BlockFailed    BlockStatus = "error"
)

// MessageBlock is a typed content unit owned by exactly one message.
// Metadata holds the type-dependent structured payload (tool arguments,
// citation sources, per-model sub-results).
type MessageBlock struct {
	ID        string                 `json:"id"`
	MessageID string                 `json:"message_id"`
	Type      BlockType              `json:"type"`
	Status    BlockStatus            `json:"status"`
	Content   string                 `json:"content,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Validate checks if the MessageBlock has valid data
func (b *MessageBlock) Validate() error {
	if b.ID == "" {
		return errors.New("block ID cannot be empty")
	}
	if b.MessageID == "" {
		return errors.New("block message ID cannot be empty")
	}
	if b.Type == "" {
		return errors.New("block type cannot be empty")
	}
	return nil
}

// Clone returns a deep copy of the block. The structured metadata payload is
// round-tripped through JSON so later mutation of the caller's maps cannot
// reach the stored snapshot. Payloads that cannot be serialized (cycles,
// channels, functions) are rejected here, before any write happens.
func (b *MessageBlock) Clone() (*MessageBlock, error) {
	copied := *b
	if b.Metadata != nil {
		raw, err := json.Marshal(b.Metadata)
		if err != nil {
			return nil, fmt.Errorf("block %s metadata is not serializable: %w", b.ID, err)
		}
		copied.Metadata = make(map[string]interface{}, len(b.Metadata))
		if err := json.Unmarshal(raw, &copied.Metadata); err != nil {
			return nil, fmt.Errorf("block %s metadata copy failed: %w", b.ID, err)
		}
	}
	return &copied, nil
}

// BlockDelta is a partial update applied to a streaming block. Nil fields are
// left untouched; Append is concatenated onto the existing content.
type BlockDelta struct {
	Content  *string                `json:"content,omitempty"`
	Append   string                 `json:"append,omitempty"`
	Status   *BlockStatus           `json:"status,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Apply merges the delta into the block and bumps UpdatedAt.
func (b *MessageBlock) Apply(d BlockDelta) {
	if d.Content != nil {
		b.Content = *d.Content
	}
	if d.Append != "" {
		b.Content += d.Append
	}
	if d.Status != nil {
		b.Status = *d.Status
	}
	if d.Metadata != nil {
		if b.Metadata == nil {
			b.Metadata = make(map[string]interface{}, len(d.Metadata))
		}
		for k, v := range d.Metadata {
			b.Metadata[k] = v
		}
	}
	b.UpdatedAt = time.Now().UTC()
}

// Merge folds a newer delta onto an older one so the coalescer can keep a
// single pending delta per block. Recency wins for scalar fields; appends
// concatenate.
func (d BlockDelta) Merge(next BlockDelta) BlockDelta {
	merged := d
	if next.Content != nil {
		merged.Content = next.Content
		merged.Append = next.Append
	} else {
		merged.Append += next.Append
	}
	if next.Status != nil {
		merged.Status = next.Status
	}
	if next.Metadata != nil {
		// Fresh map so the merge never mutates either input delta.
		meta := make(map[string]interface{}, len(d.Metadata)+len(next.Metadata))
		for k, v := range d.Metadata {
			meta[k] = v
		}
		for k, v := range next.Metadata {
			meta[k] = v
		}
		merged.Metadata = meta
	}
	return merged
}
