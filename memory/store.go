package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const (
	semanticFile = "semantic_memory.json"
	episodicFile = "episodic_memory.json"
)

// FileStore persists the episodic list and the semantic map as two
// pretty-printed JSON documents under <root>/<userID>/.
//
// Each save is a full-document overwrite, atomic per file (write to a temp
// file, then rename) but not transactional across the two files. A crash
// between the episodic and semantic writes can leave them inconsistent;
// both files are regenerated wholesale on the next successful save.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) userDir(userID string) string {
	return filepath.Join(s.root, userID)
}

// Load reads both layers for a user. Read failure of either file (missing,
// malformed) is non-fatal: that layer comes back as its empty default.
func (s *FileStore) Load(userID string) ([]EpisodicRecord, map[string]any) {
	dir := s.userDir(userID)

	var episodic []EpisodicRecord
	if err := readJSON(filepath.Join(dir, episodicFile), &episodic); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[STORE] Could not load episodic memory for %s: %v", userID, err)
		}
		episodic = nil
	}

	semantic := map[string]any{}
	if err := readJSON(filepath.Join(dir, semanticFile), &semantic); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[STORE] Could not load semantic memory for %s: %v", userID, err)
		}
		semantic = map[string]any{}
	}

	return episodic, semantic
}

// Save overwrites both layers. On error the in-memory state stays
// authoritative for the session; the turn's effect may be lost on restart.
func (s *FileStore) Save(userID string, episodic []EpisodicRecord, semantic map[string]any) error {
	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}

	if episodic == nil {
		episodic = []EpisodicRecord{}
	}
	if err := writeJSON(filepath.Join(dir, episodicFile), episodic); err != nil {
		return fmt.Errorf("save episodic memory: %w", err)
	}
	if semantic == nil {
		semantic = map[string]any{}
	}
	if err := writeJSON(filepath.Join(dir, semanticFile), semantic); err != nil {
		return fmt.Errorf("save semantic memory: %w", err)
	}
	return nil
}

// Delete removes both persisted files. Missing files are not an error;
// other failures are reported per file but do not stop the remaining steps.
func (s *FileStore) Delete(userID string) error {
	dir := s.userDir(userID)
	var firstErr error
	for _, name := range []string{semanticFile, episodicFile} {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[STORE] Could not remove %s: %v", name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
