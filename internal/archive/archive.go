// Package archive preserves plan state beyond a session's lifetime: a
// permanent snapshot of every terminal plan, a capped session history, and
// resumable continuation records for unfinished work.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmelton/plangate/internal/logs"
	"github.com/dmelton/plangate/internal/types"
)

const historyFile = "session_history.json"

// Archive manages the archive directory.
type Archive struct {
	dir         string
	archiveKeep int
	historyKeep int
	log         *logs.Logger
}

// New builds an archive rooted at dir, pruning snapshots beyond archiveKeep
// and history entries beyond historyKeep.
func New(dir string, archiveKeep, historyKeep int, log *logs.Logger) *Archive {
	return &Archive{dir: dir, archiveKeep: archiveKeep, historyKeep: historyKeep, log: log}
}

// snapshot wraps the final plan state with archival metadata.
type snapshot struct {
	types.PlanState
	ArchivedAt     time.Time `json:"archived_at"`
	FinalSessionID string    `json:"final_session_id"`
	FinalStats     stats     `json:"final_stats"`
}

type stats struct {
	TotalItems     int     `json:"total_items"`
	CompletedItems int     `json:"completed_items"`
	CompletionRate float64 `json:"completion_rate"`
}

// SnapshotPlan writes a permanent copy of the final plan state and returns
// its path. Snapshots are written regardless of completion.
func (a *Archive) SnapshotPlan(plan *types.PlanState, sessionID string) (string, error) {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create archive directory: %w", err)
	}

	completed, total := plan.Progress()
	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total) * 100
	}

	snap := snapshot{
		PlanState:      *plan,
		ArchivedAt:     time.Now(),
		FinalSessionID: sessionID,
		FinalStats:     stats{TotalItems: total, CompletedItems: completed, CompletionRate: rate},
	}

	name := fmt.Sprintf("plan_%s_%s.json", time.Now().Format("20060102_150405"), safeName(plan.Name))
	path := filepath.Join(a.dir, name)
	if err := writeJSON(path, snap); err != nil {
		return "", err
	}
	a.log.Printf("archived plan %q to %s", plan.Name, name)
	return path, nil
}

// Prune removes the oldest snapshots beyond the configured cap.
func (a *Archive) Prune() {
	entries, err := filepath.Glob(filepath.Join(a.dir, "plan_*.json"))
	if err != nil || len(entries) <= a.archiveKeep {
		return
	}
	sort.Strings(entries) // timestamped names sort chronologically
	for _, old := range entries[:len(entries)-a.archiveKeep] {
		if err := os.Remove(old); err == nil {
			a.log.Printf("removed old archive %s", filepath.Base(old))
		}
	}
}

type history struct {
	Sessions    []types.SessionSummary `json:"sessions"`
	LastUpdated time.Time              `json:"last_updated"`
}

// AppendHistory records one ended session, keeping the most recent entries.
func (a *Archive) AppendHistory(entry types.SessionSummary) error {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("cannot create archive directory: %w", err)
	}

	path := filepath.Join(a.dir, historyFile)
	var h history
	if data, err := os.ReadFile(path); err == nil {
		// Corrupt history restarts empty rather than failing the session end.
		_ = json.Unmarshal(data, &h)
	}

	h.Sessions = append(h.Sessions, entry)
	if len(h.Sessions) > a.historyKeep {
		h.Sessions = h.Sessions[len(h.Sessions)-a.historyKeep:]
	}
	h.LastUpdated = time.Now()

	return writeJSON(path, h)
}

// History returns the recorded session summaries, oldest first.
func (a *Archive) History() []types.SessionSummary {
	data, err := os.ReadFile(filepath.Join(a.dir, historyFile))
	if err != nil {
		return nil
	}
	var h history
	if err := json.Unmarshal(data, &h); err != nil {
		return nil
	}
	return h.Sessions
}

// safeName sanitizes a plan name for use in a filename.
func safeName(name string) string {
	if name == "" {
		name = "unnamed"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		if b.Len() >= 30 {
			break
		}
	}
	return b.String()
}

func writeJSON(path string, v any) error {
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
