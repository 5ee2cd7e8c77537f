package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dmelton/plangate/internal/planfile"
	"github.com/dmelton/plangate/internal/types"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Capture plan files written by the agent (PostToolUse Write|Edit hook)",
	Run: func(cmd *cobra.Command, args []string) {
		runHook("track", runTrack)
	},
}

func runTrack(rt *runtime, ev *types.HookEvent) types.HookResponse {
	if !rt.cfg.Enabled {
		return types.Allow("")
	}
	if ev.ToolName != "Write" && ev.ToolName != "Edit" {
		return types.Allow("")
	}

	path := ev.ToolInput.FilePath
	if path == "" || !planfile.IsPlanPath(path) {
		return types.Allow("")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		rt.log.Printf("cannot read plan file %s: %v", path, err)
		return types.Allow("")
	}

	doc, err := planfile.Parse(path, content)
	if err != nil {
		rt.log.Printf("cannot parse plan file %s: %v", path, err)
		return types.Allow("")
	}

	existing := rt.store.LoadPlan(ev.SessionID)

	// Re-writing the same plan file must not lose progress already made.
	if existing != nil && existing.PlanFile == path {
		planfile.PreserveStatuses(doc, existing)
	}

	plan := &types.PlanState{
		SessionID:   ev.SessionID,
		PlanSource:  "file",
		PlanFile:    path,
		Name:        doc.Name,
		Description: doc.Description,
		Items:       doc.Items,
		Format:      doc.Format,
	}
	if existing != nil {
		plan.CreatedAt = existing.CreatedAt
	}

	if err := rt.store.SavePlan(plan); err != nil {
		rt.log.Printf("cannot save plan state: %v", err)
		return types.Allow("")
	}
	if err := rt.store.SetActivePlan(&types.ActivePlan{
		SessionID: ev.SessionID,
		PlanFile:  path,
		Name:      doc.Name,
	}); err != nil {
		rt.log.Printf("cannot update active plan: %v", err)
	}

	rt.log.Printf("session %s: tracked plan %q with %d items from %s", ev.SessionID, doc.Name, len(doc.Items), path)
	return types.Allow("")
}

func init() {
	rootCmd.AddCommand(trackCmd)
}
