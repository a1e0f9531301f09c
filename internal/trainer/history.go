// Package trainer orchestrates model training cycles: initial bootstrap from
// seed data and retraining that folds in accumulated user corrections.
package trainer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/ml"
)

// History is the append-only record of training runs, persisted as JSON next
// to the model artifacts.
type History struct {
	LastTraining            *time.Time     `json:"last_training"`
	Versions                []int          `json:"versions"`
	RetrainingEvents        []HistoryEvent `json:"retraining_events"`
	TotalCorrectionsApplied int            `json:"total_corrections_applied"`
}

// HistoryEvent describes one completed training run.
type HistoryEvent struct {
	Timestamp          time.Time  `json:"timestamp"`
	Metrics            ml.Metrics `json:"metrics"`
	CorrectionIDs      []int64    `json:"correction_ids,omitempty"`
	Version            int        `json:"version"`
	CorrectionsApplied int        `json:"corrections_applied"`
	IsInitial          bool       `json:"is_initial"`
}

// HistoryStore reads and appends the training history file.
type HistoryStore struct {
	path string
}

// NewHistoryStore creates a history store at path. The file is created on
// first append.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Load reads the history, returning an empty history when the file does not
// exist yet.
func (h *HistoryStore) Load() (*History, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &History{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read training history: %v", common.ErrPersistenceFailure, err)
	}

	var history History
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("%w: corrupt training history: %v", common.ErrPersistenceFailure, err)
	}
	return &history, nil
}

// Append records a completed training run and rewrites the file atomically.
func (h *HistoryStore) Append(event HistoryEvent) error {
	history, err := h.Load()
	if err != nil {
		return err
	}

	history.Versions = append(history.Versions, event.Version)
	history.RetrainingEvents = append(history.RetrainingEvents, event)
	history.TotalCorrectionsApplied += event.CorrectionsApplied
	ts := event.Timestamp
	history.LastTraining = &ts

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode training history: %v", common.ErrPersistenceFailure, err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o750); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(h.path), ".history-*")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	if err := os.Rename(tmp.Name(), h.path); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
	}
	return nil
}
