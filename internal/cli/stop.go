package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmelton/plangate/internal/gate"
	"github.com/dmelton/plangate/internal/types"
	"github.com/dmelton/plangate/internal/validate"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Gate termination attempts on plan completion (Stop hook)",
	Run: func(cmd *cobra.Command, args []string) {
		runHook("stop", runStop)
	},
}

func runStop(rt *runtime, ev *types.HookEvent) types.HookResponse {
	g := gate.New(rt.store, rt.resolver, rt.cfg, rt.log)
	decision := g.Evaluate(ev.SessionID, ev.TranscriptPath)

	if !decision.Allow {
		return types.Block(decision.Message)
	}

	// On a completed plan, optionally run the configured validation
	// commands once. Failures append fix tasks and block this stop; the
	// validation_failed latch keeps the next attempt from re-running them.
	if decision.Reason == gate.ReasonComplete && decision.Plan != nil {
		if resp, blocked := runCompletionValidation(rt, ev.SessionID, decision); blocked {
			return resp
		}
		return types.Allow(completionMessage(rt, decision.Message))
	}

	return types.Allow(decision.Message)
}

func runCompletionValidation(rt *runtime, sessionID string, decision gate.Decision) (types.HookResponse, bool) {
	plan := decision.Plan
	if !rt.cfg.AutoValidate || len(rt.cfg.ValidationCommands) == 0 || plan.ValidationFailed {
		return types.HookResponse{}, false
	}

	results := rt.validator().Run(context.Background(), rt.cfg.ValidationCommands)

	var failed []string
	var errs []string
	for _, res := range results {
		if !res.OK && res.Required {
			failed = append(failed, res.Name)
			errs = append(errs, res.Errors...)
		}
	}
	if len(failed) == 0 {
		return types.HookResponse{}, false
	}

	if added := validate.AppendFixTasks(plan, results); added > 0 {
		if err := rt.store.SavePlan(plan); err != nil {
			rt.log.Printf("session %s: cannot save fix tasks: %v", sessionID, err)
			return types.HookResponse{}, false
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validation FAILED: %s\n\nErrors found:\n", strings.Join(failed, ", "))
	for i, e := range errs {
		if i >= 5 {
			fmt.Fprintf(&b, "  ... and %d more errors\n", len(errs)-5)
			break
		}
		if len(e) > 80 {
			e = e[:80]
		}
		fmt.Fprintf(&b, "  - %s\n", e)
	}
	b.WriteString("\nFix these issues before stopping.")

	rt.log.Printf("session %s: completion validation failed (%s), blocking stop", sessionID, strings.Join(failed, ", "))
	return types.Block(b.String()), true
}

// completionMessage appends an informational file-change summary when git
// reports modifications. Never changes the allow decision.
func completionMessage(rt *runtime, base string) string {
	files := rt.validator().ChangedFiles(context.Background())
	if len(files) == 0 || strings.Contains(base, "warnings") {
		return base
	}
	return fmt.Sprintf("%s (%d files modified)", base, len(files))
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
