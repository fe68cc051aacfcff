// Package progress persists per-collection pagination checkpoints.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"altibbi/internal/logger"
	"altibbi/pkg/utils"
)

// Checkpoint is the on-disk progress marker: the last fully processed page.
type Checkpoint struct {
	Page int `json:"page"`
}

// Store reads and writes checkpoint files.
type Store struct {
	logger *logger.Logger
}

// NewStore creates a checkpoint store.
func NewStore(log *logger.Logger) *Store {
	return &Store{logger: log}
}

// Save overwrites the checkpoint at path. Failures are logged and returned;
// callers may carry on, losing only resumability.
func (s *Store) Save(path string, page int) error {
	data, err := json.Marshal(Checkpoint{Page: page})
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		s.logger.Warn("Error saving progress", "path", path, "page", page, "error", err)

		return fmt.Errorf("failed to save checkpoint %s: %w", path, err)
	}

	return nil
}

// Load returns the checkpointed page, or 0 when the file is absent,
// unreadable, malformed or holds a negative page.
func (s *Store) Load(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Error loading progress", "path", path, "error", err)
		}

		return 0
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		s.logger.Warn("Error loading progress", "path", path, "error", err)

		return 0
	}

	if cp.Page < 0 {
		s.logger.Warn("Ignoring negative checkpoint page", "path", path, "page", cp.Page)

		return 0
	}

	return cp.Page
}

// Exists reports whether a checkpoint file is present at path.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// Clear removes the checkpoint. A missing file is not an error.
func (s *Store) Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint %s: %w", path, err)
	}

	return nil
}
