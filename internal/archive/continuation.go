package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmelton/plangate/internal/store"
	"github.com/dmelton/plangate/internal/types"
)

const continuationsDir = "continuations"

func (a *Archive) continuationPath(sessionID string) string {
	return filepath.Join(a.dir, continuationsDir, sessionID+".json")
}

// SaveContinuation snapshots an unfinished plan so a later session can
// resume it. Keyed by the ending session's id; overwrites any prior record
// for the same session.
func (a *Archive) SaveContinuation(plan *types.PlanState) error {
	completed, total := plan.Progress()
	rec := types.ContinuationRecord{
		SessionID:       plan.SessionID,
		PlanName:        plan.Name,
		Items:           plan.Items,
		CompletedCount:  completed,
		TotalCount:      total,
		SavedAt:         time.Now(),
		AccumulatedCost: plan.AccumulatedCost,
		TotalTokens:     plan.TotalInputTokens + plan.TotalOutputTokens,
	}

	dir := filepath.Join(a.dir, continuationsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create continuations directory: %w", err)
	}
	if err := writeJSON(a.continuationPath(plan.SessionID), rec); err != nil {
		return err
	}
	a.log.Printf("saved continuation for session %s (%d/%d complete)", plan.SessionID, completed, total)
	return nil
}

// DeleteContinuation removes the record for a session; no error if absent.
func (a *Archive) DeleteContinuation(sessionID string) error {
	err := os.Remove(a.continuationPath(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Continuations lists all pending continuation records, newest first.
func (a *Archive) Continuations() []types.ContinuationRecord {
	entries, err := os.ReadDir(filepath.Join(a.dir, continuationsDir))
	if err != nil {
		return nil
	}
	var recs []types.ContinuationRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(a.dir, continuationsDir, entry.Name()))
		if err != nil {
			continue
		}
		var rec types.ContinuationRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	for i := 0; i < len(recs); i++ {
		for j := i + 1; j < len(recs); j++ {
			if recs[j].SavedAt.After(recs[i].SavedAt) {
				recs[i], recs[j] = recs[j], recs[i]
			}
		}
	}
	return recs
}

// FindContinuation locates a record by full session id or unique prefix.
func (a *Archive) FindContinuation(prefix string) (*types.ContinuationRecord, error) {
	if prefix == "" {
		return nil, fmt.Errorf("empty session prefix")
	}

	var matches []types.ContinuationRecord
	for _, rec := range a.Continuations() {
		if rec.SessionID == prefix {
			r := rec
			return &r, nil
		}
		if strings.HasPrefix(rec.SessionID, prefix) {
			matches = append(matches, rec)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no continuation found for session %q", prefix)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("session prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

// Resume materializes a continuation as a brand-new plan owned by the
// resuming session, preserving item ids, statuses, and order, points the
// active plan at it, and deletes the consumed record. Consumption is
// exactly-once: the record is gone after a successful resume.
func (a *Archive) Resume(prefix, newSessionID string, st store.Store) (*types.PlanState, error) {
	rec, err := a.FindContinuation(prefix)
	if err != nil {
		return nil, err
	}

	plan := &types.PlanState{
		SessionID:       newSessionID,
		PlanSource:      "continuation",
		Name:            rec.PlanName,
		Items:           rec.Items,
		AccumulatedCost: rec.AccumulatedCost,
	}
	if err := st.SavePlan(plan); err != nil {
		return nil, fmt.Errorf("cannot save resumed plan: %w", err)
	}
	if err := st.SetActivePlan(&types.ActivePlan{SessionID: newSessionID, Name: rec.PlanName}); err != nil {
		return nil, fmt.Errorf("cannot update active plan: %w", err)
	}
	if err := a.DeleteContinuation(rec.SessionID); err != nil {
		return nil, fmt.Errorf("cannot consume continuation: %w", err)
	}

	a.log.Printf("resumed plan %q from session %s as session %s", rec.PlanName, rec.SessionID, newSessionID)
	return plan, nil
}
