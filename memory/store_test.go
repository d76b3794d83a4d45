package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileStore_LoadMissingUserDefaults(t *testing.T) {
	store := NewFileStore(t.TempDir())

	episodic, semantic := store.Load("nobody")
	if len(episodic) != 0 {
		t.Errorf("expected empty episodic list, got %d records", len(episodic))
	}
	if len(semantic) != 0 {
		t.Errorf("expected empty semantic map, got %v", semantic)
	}
}

func TestFileStore_MalformedFileDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "alice")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, episodicFile), []byte("{corrupt"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, semanticFile), []byte("[wrong shape]"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(root)
	episodic, semantic := store.Load("alice")
	if len(episodic) != 0 || len(semantic) != 0 {
		t.Errorf("malformed files should load as empty defaults, got %d/%v", len(episodic), semantic)
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	rec := NewEpisodicRecord(time.Now())
	rec.Interaction = Interaction{UserMessage: "我很难过", AIResponse: "我会陪伴你"}
	rec.Summary = "用户表达了 sadness"

	semantic := map[string]any{"user_profile": map[string]any{"preferences": map[string]any{"preferred_time": "evening"}}}
	if err := store.Save("alice", []EpisodicRecord{rec}, semantic); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	episodic, loadedSemantic := store.Load("alice")
	if len(episodic) != 1 {
		t.Fatalf("expected 1 record, got %d", len(episodic))
	}
	got := episodic[0]
	if got.ID != rec.ID || got.Summary != rec.Summary || got.Interaction.UserMessage != rec.Interaction.UserMessage {
		t.Errorf("round trip mismatch: %+v vs %+v", got, rec)
	}
	if got.Timestamp != rec.Timestamp {
		t.Errorf("timestamp mismatch: %v vs %v", got.Timestamp, rec.Timestamp)
	}
	if got.Datetime != rec.Datetime {
		t.Errorf("datetime mismatch: %q vs %q", got.Datetime, rec.Datetime)
	}
	if _, ok := loadedSemantic["user_profile"]; !ok {
		t.Error("semantic user_profile missing after round trip")
	}
}

func TestFileStore_PrettyPrinted(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root)

	if err := store.Save("alice", nil, map[string]any{"k": "v"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "alice", semanticFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Errorf("expected indented output, got %q", data)
	}
}

func TestFileStore_DeleteIdempotent(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root)

	if err := store.Save("alice", nil, map[string]any{}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("alice"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "alice", episodicFile)); !os.IsNotExist(err) {
		t.Error("episodic file should be gone")
	}
	if err := store.Delete("alice"); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}
