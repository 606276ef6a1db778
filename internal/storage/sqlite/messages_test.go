// ABOUTME: Tests for MessageStore CRUD operations
// ABOUTME: Verifies chronological topic queries and version round-trips
package sqlite

import (
	"testing"
	"time"

	"github.com/llmhouse/chatstore/internal/models"
)

func TestMessageStore_SaveAndGet(t *testing.T) {
	store := newTestStorage(t)

	msg := &models.Message{
		ID:          "m1",
		TopicID:     "t1",
		AssistantID: "a1",
		Role:        models.RoleAssistant,
		Status:      models.StatusSuccess,
		ModelID:     "gpt-4o",
		AskID:       "m0",
		BlockIDs:    []string{"b1", "b2"},
		Versions: []models.MessageVersion{
			{ID: "v1", ModelID: "gpt-4o", BlockIDs: []string{"b1"}, CreatedAt: time.Now().UTC()},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.Messages().Save(msg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Messages().Get("m1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil")
	}
	if got.Role != models.RoleAssistant || got.ModelID != "gpt-4o" || got.AskID != "m0" {
		t.Errorf("got %+v", got)
	}
	if len(got.BlockIDs) != 2 || got.BlockIDs[1] != "b2" {
		t.Errorf("BlockIDs = %v, want [b1 b2]", got.BlockIDs)
	}
	if len(got.Versions) != 1 || got.Versions[0].ID != "v1" {
		t.Errorf("Versions = %v, want one retained version", got.Versions)
	}
}

func TestMessageStore_GetMissing(t *testing.T) {
	store := newTestStorage(t)

	got, err := store.Messages().Get("nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Error("Get() on absent id should return nil, nil")
	}
}

func TestMessageStore_GetByTopic_Chronological(t *testing.T) {
	store := newTestStorage(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"m3", "m1", "m2"} {
		offset := map[string]int{"m1": 0, "m2": 1, "m3": 2}[id]
		msg := &models.Message{
			ID:        id,
			TopicID:   "t1",
			Role:      models.RoleUser,
			Status:    models.StatusSuccess,
			CreatedAt: base.Add(time.Duration(offset) * time.Minute),
		}
		if err := store.Messages().Save(msg); err != nil {
			t.Fatalf("Save(%s) error = %v (iteration %d)", id, err, i)
		}
	}

	msgs, err := store.Messages().GetByTopic("t1")
	if err != nil {
		t.Fatalf("GetByTopic() error = %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("GetByTopic() = %d messages, want 3", len(msgs))
	}
	if msgs[0].ID != "m1" || msgs[1].ID != "m2" || msgs[2].ID != "m3" {
		t.Errorf("order = [%s %s %s], want oldest first", msgs[0].ID, msgs[1].ID, msgs[2].ID)
	}
}

func TestMessageStore_BulkGet(t *testing.T) {
	store := newTestStorage(t)

	for _, id := range []string{"m1", "m2"} {
		msg := &models.Message{ID: id, TopicID: "t1", Role: models.RoleUser, Status: models.StatusSuccess}
		if err := store.Messages().Save(msg); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	msgs, err := store.Messages().BulkGet([]string{"m2", "missing"})
	if err != nil {
		t.Fatalf("BulkGet() error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "m2" {
		t.Errorf("BulkGet() = %v, want [m2]", msgs)
	}
}

func TestMessageStore_GetAll(t *testing.T) {
	store := newTestStorage(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, tc := range []struct{ id, topic string }{
		{"m2", "t1"}, {"m1", "t1"}, {"m3", "t2"},
	} {
		offset := map[string]int{"m1": 0, "m2": 1, "m3": 2}[tc.id]
		msg := &models.Message{
			ID:        tc.id,
			TopicID:   tc.topic,
			Role:      models.RoleUser,
			Status:    models.StatusSuccess,
			CreatedAt: base.Add(time.Duration(offset) * time.Minute),
		}
		if err := store.Messages().Save(msg); err != nil {
			t.Fatalf("Save(%s) error = %v (iteration %d)", tc.id, err, i)
		}
	}

	msgs, err := store.Messages().GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("GetAll() = %d messages, want 3", len(msgs))
	}
	if msgs[0].ID != "m1" || msgs[2].ID != "m3" {
		t.Errorf("order = [%s %s %s], want oldest first", msgs[0].ID, msgs[1].ID, msgs[2].ID)
	}
}

func TestMessageStore_BulkDelete(t *testing.T) {
	store := newTestStorage(t)

	for _, id := range []string{"m1", "m2", "m3"} {
		msg := &models.Message{ID: id, TopicID: "t1", Role: models.RoleUser, Status: models.StatusSuccess}
		if err := store.Messages().Save(msg); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	if err := store.Messages().BulkDelete([]string{"m1", "m3", "missing"}); err != nil {
		t.Fatalf("BulkDelete() error = %v", err)
	}

	count, err := store.Messages().Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
	if got, _ := store.Messages().Get("m2"); got == nil {
		t.Error("m2 should survive")
	}

	// Empty id set is a no-op
	if err := store.Messages().BulkDelete(nil); err != nil {
		t.Fatalf("BulkDelete(nil) error = %v", err)
	}
}

func TestMessageStore_Delete(t *testing.T) {
	store := newTestStorage(t)

	msg := &models.Message{ID: "m1", TopicID: "t1", Role: models.RoleUser, Status: models.StatusSuccess}
	if err := store.Messages().Save(msg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Messages().Delete("m1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := store.Messages().Get("m1"); got != nil {
		t.Error("message should be gone")
	}
}
