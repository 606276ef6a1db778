// ABOUTME: Tests for TopicStore CRUD operations
// ABOUTME: Verifies upsert, recency ordering, and bulk access
package sqlite

import (
	"testing"
	"time"

	"github.com/llmhouse/chatstore/internal/models"
)

func TestTopicStore_SaveAndGet(t *testing.T) {
	store := newTestStorage(t)

	topic := &models.Topic{
		ID:              "t1",
		Name:            "Go questions",
		AssistantID:     "a1",
		Prompt:          "You are a Go tutor",
		MessageIDs:      []string{"m1", "m2"},
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
		LastMessageTime: time.Now().UTC(),
	}
	if err := store.Topics().Save(topic); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Topics().Get("t1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil")
	}
	if got.Name != "Go questions" || got.Prompt != "You are a Go tutor" {
		t.Errorf("got %+v", got)
	}
	if len(got.MessageIDs) != 2 || got.MessageIDs[0] != "m1" {
		t.Errorf("MessageIDs = %v, want [m1 m2]", got.MessageIDs)
	}
}

func TestTopicStore_GetMissing(t *testing.T) {
	store := newTestStorage(t)

	got, err := store.Topics().Get("nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Error("Get() on absent id should return nil, nil")
	}
}

func TestTopicStore_Upsert(t *testing.T) {
	store := newTestStorage(t)

	topic := &models.Topic{ID: "t1", Name: "before"}
	if err := store.Topics().Save(topic); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	topic.Name = "after"
	if err := store.Topics().Save(topic); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	count, err := store.Topics().Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	got, _ := store.Topics().Get("t1")
	if got.Name != "after" {
		t.Errorf("Name = %q, want after", got.Name)
	}
}

func TestTopicStore_GetAll_RecencyOrder(t *testing.T) {
	store := newTestStorage(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"t_old", "t_mid", "t_new"} {
		topic := &models.Topic{
			ID:              id,
			LastMessageTime: base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.Topics().Save(topic); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	topics, err := store.Topics().GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(topics) != 3 {
		t.Fatalf("GetAll() = %d topics, want 3", len(topics))
	}
	if topics[0].ID != "t_new" || topics[2].ID != "t_old" {
		t.Errorf("order = [%s %s %s], want newest first", topics[0].ID, topics[1].ID, topics[2].ID)
	}
}

func TestTopicStore_GetByAssistant(t *testing.T) {
	store := newTestStorage(t)

	for _, tc := range []struct{ id, assistant string }{
		{"t1", "a1"}, {"t2", "a1"}, {"t3", "a2"},
	} {
		if err := store.Topics().Save(&models.Topic{ID: tc.id, AssistantID: tc.assistant}); err != nil {
			t.Fatalf("Save(%s) error = %v", tc.id, err)
		}
	}

	topics, err := store.Topics().GetByAssistant("a1")
	if err != nil {
		t.Fatalf("GetByAssistant() error = %v", err)
	}
	if len(topics) != 2 {
		t.Errorf("GetByAssistant() = %d topics, want 2", len(topics))
	}
}

func TestTopicStore_BulkGet(t *testing.T) {
	store := newTestStorage(t)

	for _, id := range []string{"t1", "t2", "t3"} {
		if err := store.Topics().Save(&models.Topic{ID: id}); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	topics, err := store.Topics().BulkGet([]string{"t1", "t3", "missing"})
	if err != nil {
		t.Fatalf("BulkGet() error = %v", err)
	}
	if len(topics) != 2 {
		t.Errorf("BulkGet() = %d topics, want 2 (absent ids skipped)", len(topics))
	}

	empty, err := store.Topics().BulkGet(nil)
	if err != nil {
		t.Fatalf("BulkGet(nil) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("BulkGet(nil) = %v, want empty", empty)
	}
}

func TestTopicStore_BulkDelete(t *testing.T) {
	store := newTestStorage(t)

	for _, id := range []string{"t1", "t2", "t3"} {
		if err := store.Topics().Save(&models.Topic{ID: id}); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	if err := store.Topics().BulkDelete([]string{"t1", "t3", "missing"}); err != nil {
		t.Fatalf("BulkDelete() error = %v", err)
	}

	count, err := store.Topics().Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
	if got, _ := store.Topics().Get("t2"); got == nil {
		t.Error("t2 should survive")
	}

	// Empty id set is a no-op
	if err := store.Topics().BulkDelete(nil); err != nil {
		t.Fatalf("BulkDelete(nil) error = %v", err)
	}
}

func TestTopicStore_Delete(t *testing.T) {
	store := newTestStorage(t)

	if err := store.Topics().Save(&models.Topic{ID: "t1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Topics().Delete("t1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := store.Topics().Get("t1"); got != nil {
		t.Error("topic should be gone")
	}
}
