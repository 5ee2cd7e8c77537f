package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmelton/plangate/internal/types"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Archive the session's plan when it actually ends (Stop hook, after stop)",
	Run: func(cmd *cobra.Command, args []string) {
		runHook("cleanup", runCleanup)
	},
}

func runCleanup(rt *runtime, ev *types.HookEvent) types.HookResponse {
	plan := rt.store.LoadPlan(ev.SessionID)

	// If the stop gate just denied this attempt the session is not really
	// ending; the attempt counter sitting below the ceiling is the tell.
	if rt.cfg.Enabled && plan != nil && len(plan.IncompleteItems()) > 0 {
		attempts := rt.store.StopAttempts(ev.SessionID)
		if attempts > 0 && attempts < rt.cfg.MaxStopAttempts {
			rt.log.Printf("session %s: stop likely blocked (attempt %d/%d), skipping cleanup", ev.SessionID, attempts, rt.cfg.MaxStopAttempts)
			return types.Allow("")
		}
	}

	var msg string
	if plan != nil && len(plan.Items) > 0 {
		archivePath, err := rt.archive.SnapshotPlan(plan, ev.SessionID)
		if err != nil {
			rt.log.Printf("session %s: cannot archive plan: %v", ev.SessionID, err)
		}

		incomplete := plan.IncompleteItems()
		if len(incomplete) > 0 {
			if err := rt.archive.SaveContinuation(plan); err != nil {
				rt.log.Printf("session %s: cannot save continuation: %v", ev.SessionID, err)
			}
		} else {
			if err := rt.archive.DeleteContinuation(ev.SessionID); err != nil {
				rt.log.Printf("session %s: cannot delete continuation: %v", ev.SessionID, err)
			}
		}

		completed, total := plan.Progress()
		started := plan.CreatedAt
		entry := types.SessionSummary{
			SessionID:      ev.SessionID,
			PlanName:       plan.Name,
			ItemsTotal:     total,
			ItemsCompleted: completed,
			ArchivePath:    archivePath,
		}
		if !started.IsZero() {
			entry.StartedAt = &started
		}
		entry.EndedAt = time.Now()
		if err := rt.archive.AppendHistory(entry); err != nil {
			rt.log.Printf("session %s: cannot update history: %v", ev.SessionID, err)
		}

		if err := rt.store.DeletePlan(ev.SessionID); err != nil {
			rt.log.Printf("session %s: cannot delete plan state: %v", ev.SessionID, err)
		}

		msg = fmt.Sprintf("Session archived: %d/%d items completed", completed, total)
	}

	rt.store.ClearStopAttempts(ev.SessionID)
	rt.archive.Prune()
	rt.store.RemoveStale(rt.staleAge())

	return types.Allow(msg)
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
