// ABOUTME: BlockWriter coalesces streamed token deltas into periodic block writes
// ABOUTME: Flushes retry with backoff; terminal failure marks the message errored
package sqlite

import (
	"errors"
	"log"
	"time"

	"github.com/llmhouse/chatstore/internal/coalesce"
	"github.com/llmhouse/chatstore/internal/models"
	"github.com/llmhouse/chatstore/internal/util"
)

// BlockWriter is the streaming write path. Producers feed it token deltas as
// fast as they arrive; it coalesces them per block and writes at most one
// database update per coalescing window. Callers must Close the writer when
// the stream ends or is cancelled so the last partial delta is persisted.
type BlockWriter struct {
	storage     *Storage
	co          *coalesce.Coalescer[string, models.BlockDelta]
	maxAttempts int
	retryDelay  time.Duration
}

// NewBlockWriter creates a streaming writer over storage. window is the
// coalescing window; maxAttempts and retryDelay control flush retries.
func NewBlockWriter(storage *Storage, window time.Duration, maxAttempts int, retryDelay time.Duration) *BlockWriter {
	w := &BlockWriter{
		storage:     storage,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
	w.co = coalesce.New(
		window,
		models.BlockDelta.Merge,
		w.persist,
		w.handleFailure,
	)
	return w
}

// Append schedules a content chunk for the block. Consecutive appends within
// the window concatenate into one write.
func (w *BlockWriter) Append(blockID, chunk string) error {
	streaming := models.BlockStreaming
	return w.co.Schedule(blockID, models.BlockDelta{Append: chunk, Status: &streaming})
}

// Update schedules an arbitrary partial delta for the block.
func (w *BlockWriter) Update(blockID string, delta models.BlockDelta) error {
	return w.co.Schedule(blockID, delta)
}

// Complete marks the block finished and flushes it immediately, skipping the
// remainder of the window so the terminal state is durable right away.
func (w *BlockWriter) Complete(blockID string) error {
	done := models.BlockSuccess
	if err := w.co.Schedule(blockID, models.BlockDelta{Status: &done}); err != nil {
		return err
	}
	return w.co.Flush(blockID)
}

// Flush forces the pending delta for one block to disk now.
func (w *BlockWriter) Flush(blockID string) error {
	return w.co.Flush(blockID)
}

// Close drains every pending delta and stops the writer. Always call this on
// stream end or cancellation; whatever content reached the writer before the
// cut-off is persisted.
func (w *BlockWriter) Close() error {
	return w.co.Close()
}

// persist writes one merged delta, retrying transient failures with backoff.
func (w *BlockWriter) persist(blockID string, delta models.BlockDelta) error {
	return util.Retry(w.maxAttempts, w.retryDelay, func() error {
		return w.storage.UpdateBlock(blockID, delta)
	})
}

// handleFailure runs when a flush has exhausted its retries. The owning
// message is marked errored so readers see a partial-but-flagged result
// instead of a silently truncated one.
func (w *BlockWriter) handleFailure(blockID string, err error) {
	log.Printf("[stream] block %s flush failed: %v", blockID, err)
	block, getErr := w.storage.Blocks().Get(blockID)
	if getErr != nil || block == nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[stream] block %s not found, cannot flag its message", blockID)
		}
		return
	}
	if markErr := w.storage.MarkMessageError(block.MessageID); markErr != nil {
		log.Printf("[stream] failed to mark message %s errored: %v", block.MessageID, markErr)
	}
}
