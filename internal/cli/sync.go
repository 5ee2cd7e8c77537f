package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dmelton/plangate/internal/config"
	"github.com/dmelton/plangate/internal/match"
	"github.com/dmelton/plangate/internal/reconcile"
	"github.com/dmelton/plangate/internal/types"
	"github.com/dmelton/plangate/internal/validate"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the agent's todo list with the plan (PostToolUse TodoWrite hook)",
	Run: func(cmd *cobra.Command, args []string) {
		runHook("sync", runSync)
	},
}

func runSync(rt *runtime, ev *types.HookEvent) types.HookResponse {
	if !rt.cfg.Enabled {
		return types.Allow("")
	}
	if len(ev.ToolInput.Todos) == 0 {
		return types.Allow("")
	}

	var runner *validate.Runner
	var checks []config.ValidationCommand
	if rt.cfg.AutoValidate && len(rt.cfg.ValidationCommands) > 0 {
		runner = rt.validator()
		checks = rt.cfg.ValidationCommands
	}

	rec := reconcile.New(rt.store, rt.resolver, match.NewKeywordScorer(), rt.cfg.MatchThreshold, runner, checks, rt.log)
	result := rec.Apply(context.Background(), ev.SessionID, ev.ToolInput.Todos)

	if result.Changed() {
		rt.log.Printf("session %s: sync seeded=%d updated=%d fuzzy=%d appended=%d regressed=%d",
			ev.SessionID, result.Seeded, result.Updated, result.Fuzzy, result.Appended, result.Regressed)
	}
	return types.Allow("")
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
