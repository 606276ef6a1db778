// ABOUTME: Tests for BlockStore CRUD operations
// ABOUTME: Verifies metadata round-trip, copy isolation, and grouped loads
package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/llmhouse/chatstore/internal/models"
)

func TestBlockStore_SaveAndGet(t *testing.T) {
	store := newTestStorage(t)

	block := &models.MessageBlock{
		ID:        "b1",
		MessageID: "m1",
		Type:      models.BlockTool,
		Status:    models.BlockSuccess,
		Content:   "result",
		Metadata: map[string]interface{}{
			"tool_name": "search",
			"args":      map[string]interface{}{"q": "golang"},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Blocks().Save(block); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Blocks().Get("b1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil")
	}
	if got.Type != models.BlockTool || got.Content != "result" {
		t.Errorf("got %+v", got)
	}
	if got.Metadata["tool_name"] != "search" {
		t.Errorf("Metadata = %v", got.Metadata)
	}
	args, ok := got.Metadata["args"].(map[string]interface{})
	if !ok || args["q"] != "golang" {
		t.Errorf("nested metadata = %v", got.Metadata["args"])
	}
}

func TestBlockStore_Save_CopyIsolation(t *testing.T) {
	store := newTestStorage(t)

	meta := map[string]interface{}{"k": "original"}
	block := &models.MessageBlock{ID: "b1", MessageID: "m1", Type: models.BlockMainText, Metadata: meta}
	if err := store.Blocks().Save(block); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Mutating the caller's map after save must not change what was stored
	meta["k"] = "mutated"

	got, _ := store.Blocks().Get("b1")
	if got.Metadata["k"] != "original" {
		t.Errorf("stored metadata = %v, caller mutation leaked in", got.Metadata)
	}
}

func TestBlockStore_Save_NonSerializableMetadata(t *testing.T) {
	store := newTestStorage(t)

	block := &models.MessageBlock{
		ID:        "b1",
		MessageID: "m1",
		Type:      models.BlockTool,
		Metadata:  map[string]interface{}{"fn": func() {}},
	}
	if err := store.Blocks().Save(block); !errors.Is(err, ErrSerialization) {
		t.Errorf("Save() error = %v, want ErrSerialization", err)
	}

	if got, _ := store.Blocks().Get("b1"); got != nil {
		t.Error("nothing should be written for a rejected block")
	}
}

func TestBlockStore_GetByMessage(t *testing.T) {
	store := newTestStorage(t)

	for _, id := range []string{"b1", "b2"} {
		block := &models.MessageBlock{ID: id, MessageID: "m1", Type: models.BlockMainText}
		if err := store.Blocks().Save(block); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}
	other := &models.MessageBlock{ID: "b9", MessageID: "m2", Type: models.BlockMainText}
	if err := store.Blocks().Save(other); err != nil {
		t.Fatalf("Save(b9) error = %v", err)
	}

	blocks, err := store.Blocks().GetByMessage("m1")
	if err != nil {
		t.Fatalf("GetByMessage() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Errorf("GetByMessage() = %d blocks, want 2", len(blocks))
	}
}

func TestBlockStore_GetByMessages_Grouped(t *testing.T) {
	store := newTestStorage(t)

	for _, tc := range []struct{ id, msg string }{
		{"b1", "m1"}, {"b2", "m1"}, {"b3", "m2"},
	} {
		block := &models.MessageBlock{ID: tc.id, MessageID: tc.msg, Type: models.BlockMainText}
		if err := store.Blocks().Save(block); err != nil {
			t.Fatalf("Save(%s) error = %v", tc.id, err)
		}
	}

	grouped, err := store.Blocks().GetByMessages([]string{"m1", "m2", "m3"})
	if err != nil {
		t.Fatalf("GetByMessages() error = %v", err)
	}
	if len(grouped["m1"]) != 2 || len(grouped["m2"]) != 1 {
		t.Errorf("grouped = %v", grouped)
	}
	if _, ok := grouped["m3"]; ok {
		t.Error("absent message should have no entry")
	}
}

func TestBlockStore_GetAll(t *testing.T) {
	store := newTestStorage(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"b2", "b1"} {
		offset := map[string]int{"b1": 0, "b2": 1}[id]
		block := &models.MessageBlock{
			ID:        id,
			MessageID: "m1",
			Type:      models.BlockMainText,
			CreatedAt: base.Add(time.Duration(offset) * time.Minute),
		}
		if err := store.Blocks().Save(block); err != nil {
			t.Fatalf("Save(%s) error = %v (iteration %d)", id, err, i)
		}
	}

	blocks, err := store.Blocks().GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("GetAll() = %d blocks, want 2", len(blocks))
	}
	if blocks[0].ID != "b1" || blocks[1].ID != "b2" {
		t.Errorf("order = [%s %s], want oldest first", blocks[0].ID, blocks[1].ID)
	}
}

func TestBlockStore_BulkGet(t *testing.T) {
	store := newTestStorage(t)

	for _, id := range []string{"b1", "b2"} {
		block := &models.MessageBlock{ID: id, MessageID: "m1", Type: models.BlockMainText}
		if err := store.Blocks().Save(block); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	blocks, err := store.Blocks().BulkGet([]string{"b2", "missing"})
	if err != nil {
		t.Fatalf("BulkGet() error = %v", err)
	}
	if len(blocks) != 1 || blocks[0].ID != "b2" {
		t.Errorf("BulkGet() = %v, want [b2]", blocks)
	}

	empty, err := store.Blocks().BulkGet(nil)
	if err != nil {
		t.Fatalf("BulkGet(nil) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("BulkGet(nil) = %v, want empty", empty)
	}
}

func TestBlockStore_GetByType(t *testing.T) {
	store := newTestStorage(t)

	for _, tc := range []struct {
		id string
		bt models.BlockType
	}{
		{"b1", models.BlockMainText}, {"b2", models.BlockThinking}, {"b3", models.BlockThinking},
	} {
		block := &models.MessageBlock{ID: tc.id, MessageID: "m1", Type: tc.bt}
		if err := store.Blocks().Save(block); err != nil {
			t.Fatalf("Save(%s) error = %v", tc.id, err)
		}
	}

	blocks, err := store.Blocks().GetByType(models.BlockThinking)
	if err != nil {
		t.Fatalf("GetByType() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Errorf("GetByType() = %d blocks, want 2", len(blocks))
	}
}

func TestBlockStore_BulkDelete(t *testing.T) {
	store := newTestStorage(t)

	for _, id := range []string{"b1", "b2", "b3"} {
		block := &models.MessageBlock{ID: id, MessageID: "m1", Type: models.BlockMainText}
		if err := store.Blocks().Save(block); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	if err := store.Blocks().BulkDelete([]string{"b1", "b3"}); err != nil {
		t.Fatalf("BulkDelete() error = %v", err)
	}

	count, err := store.Blocks().Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}
