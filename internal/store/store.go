// Package store persists all session-scoped state as small JSON files.
// Absence is never an error: a missing or unparseable record reads as nil,
// because the hooks must fail open rather than surface storage problems.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmelton/plangate/internal/types"
)

// Store is the persistence boundary for plan states, the active-plan
// pointer, stop-attempt counters, and one-shot validation warnings.
// It is an interface so the backing store can be swapped without touching
// the resolver, reconciler, or gate.
type Store interface {
	LoadPlan(sessionID string) *types.PlanState
	SavePlan(state *types.PlanState) error
	DeletePlan(sessionID string) error
	Sessions() []string

	ActivePlan() *types.ActivePlan
	SetActivePlan(ap *types.ActivePlan) error
	ClearActivePlan() error

	StopAttempts(sessionID string) int
	IncrementStopAttempts(sessionID string) int
	ClearStopAttempts(sessionID string)

	SaveWarnings(sessionID string, w *types.ValidationWarnings) error
	TakeWarnings(sessionID string) *types.ValidationWarnings
}

const (
	planSuffix     = "_plan_state.json"
	attemptsSuffix = "_stop_attempts.json"
	warningsSuffix = "_warnings.json"
	activePlanFile = "active_plan.json"
)

// FileStore keeps one file per record under a sessions directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the sessions directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create sessions directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the sessions directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) planPath(sessionID string) string {
	return filepath.Join(s.dir, sessionID+planSuffix)
}

func (s *FileStore) attemptsPath(sessionID string) string {
	return filepath.Join(s.dir, sessionID+attemptsSuffix)
}

// LoadPlan returns the plan state for a session, or nil if it was never
// created or cannot be parsed.
func (s *FileStore) LoadPlan(sessionID string) *types.PlanState {
	data, err := os.ReadFile(s.planPath(sessionID))
	if err != nil {
		return nil
	}
	var state types.PlanState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil
	}
	return &state
}

// SavePlan rewrites updated_at and persists atomically (temp file + rename)
// so a concurrent reader never observes a partial write.
func (s *FileStore) SavePlan(state *types.PlanState) error {
	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.UpdatedAt = now
	return writeJSONAtomic(s.planPath(state.SessionID), state)
}

// DeletePlan removes the record; no error if absent.
func (s *FileStore) DeletePlan(sessionID string) error {
	err := os.Remove(s.planPath(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Sessions lists the session ids that have a plan state file.
func (s *FileStore) Sessions() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, planSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, planSuffix))
	}
	return ids
}

// ActivePlan reads the singleton pointer, or nil if unset or corrupt.
func (s *FileStore) ActivePlan() *types.ActivePlan {
	data, err := os.ReadFile(filepath.Join(s.dir, activePlanFile))
	if err != nil {
		return nil
	}
	var ap types.ActivePlan
	if err := json.Unmarshal(data, &ap); err != nil {
		return nil
	}
	return &ap
}

// SetActivePlan rewrites the pointer with a fresh timestamp.
func (s *FileStore) SetActivePlan(ap *types.ActivePlan) error {
	ap.UpdatedAt = time.Now()
	return writeJSONAtomic(filepath.Join(s.dir, activePlanFile), ap)
}

// ClearActivePlan removes the pointer; no error if absent.
func (s *FileStore) ClearActivePlan() error {
	err := os.Remove(filepath.Join(s.dir, activePlanFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

type stopAttempts struct {
	Attempts    int       `json:"attempts"`
	LastUpdated time.Time `json:"last_updated"`
}

// StopAttempts returns the consecutive denied-stop count for a session.
func (s *FileStore) StopAttempts(sessionID string) int {
	data, err := os.ReadFile(s.attemptsPath(sessionID))
	if err != nil {
		return 0
	}
	var sa stopAttempts
	if err := json.Unmarshal(data, &sa); err != nil {
		return 0
	}
	return sa.Attempts
}

// IncrementStopAttempts bumps the counter and returns the new value.
// A write failure still returns the incremented count; the gate must not
// fail on counter persistence.
func (s *FileStore) IncrementStopAttempts(sessionID string) int {
	count := s.StopAttempts(sessionID) + 1
	sa := stopAttempts{Attempts: count, LastUpdated: time.Now()}
	_ = writeJSONAtomic(s.attemptsPath(sessionID), sa)
	return count
}

// ClearStopAttempts resets the counter by removing its file.
func (s *FileStore) ClearStopAttempts(sessionID string) {
	_ = os.Remove(s.attemptsPath(sessionID))
}

// SaveWarnings persists a one-shot note for the stop gate.
func (s *FileStore) SaveWarnings(sessionID string, w *types.ValidationWarnings) error {
	w.SavedAt = time.Now()
	return writeJSONAtomic(filepath.Join(s.dir, sessionID+warningsSuffix), w)
}

// TakeWarnings reads and deletes the note; nil when none is pending.
func (s *FileStore) TakeWarnings(sessionID string) *types.ValidationWarnings {
	path := filepath.Join(s.dir, sessionID+warningsSuffix)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	_ = os.Remove(path)
	var w types.ValidationWarnings
	if err := json.Unmarshal(data, &w); err != nil {
		return nil
	}
	return &w
}

// RemoveStale deletes session files untouched for longer than maxAge.
func (s *FileStore) RemoveStale(maxAge time.Duration) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == activePlanFile || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(s.dir, name))
		}
	}
}

// writeJSONAtomic marshals v with indentation and writes it via a temp file
// and rename, cleaning up the temp file on failure.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal %s: %w", filepath.Base(path), err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("cannot write temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("cannot rename temp file: %w", err)
	}

	return nil
}
