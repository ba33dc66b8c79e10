// Package state persists the interaction histories to a single JSON file.
package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/renameio"

	"github.com/spacesedan/insightsyn/internal/models"
)

// Store reads and writes the backing state file. It is safe for
// concurrent use within one process.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted state, or a fresh copy of def when the file is
// missing, unreadable or not valid JSON. A corrupt file is moved aside
// before falling back so the next Save does not destroy it.
func (s *Store) Load(def models.AppState) models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("[StateStore] No state file, using default", slog.String("path", s.path))
		return def.Clone()
	}
	if err != nil {
		slog.Warn("[StateStore] Failed to read state file, using default",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return def.Clone()
	}

	var state models.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Warn("[StateStore] State file is corrupt, using default",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
			slog.String("moved_to", s.quarantine()))
		return def.Clone()
	}

	return state.Clone()
}

// Save writes state as 2-space indented JSON. The file is replaced
// atomically, so a crash mid-write leaves the previous version intact.
func (s *Store) Save(state models.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(state.Clone()); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err := renameio.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		slog.Error("[StateStore] Failed to write state file",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return fmt.Errorf("write state file: %w", err)
	}

	slog.Debug("[StateStore] State saved",
		slog.String("path", s.path),
		slog.Int("analyses", len(state.AnalysisHistory)),
		slog.Int("brainstorms", len(state.BrainstormHistory)))
	return nil
}

// quarantine renames the current state file out of the way and returns the
// new name, or "" when the rename failed.
func (s *Store) quarantine() string {
	target := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	if err := os.Rename(s.path, target); err != nil {
		slog.Warn("[StateStore] Failed to move corrupt state file",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return ""
	}
	return target
}
