package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmelton/plangate/internal/types"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Handle plan commands and inject plan context (UserPromptSubmit hook)",
	Run: func(cmd *cobra.Command, args []string) {
		runHook("prompt", runPrompt)
	},
}

var planRe = regexp.MustCompile(`(?i)^/(?:new)?plan\s+(.+)$`)

var clearCommands = map[string]bool{
	"/clearplan":  true,
	"/clear-plan": true,
	"/cleartasks": true,
}

var showCommands = map[string]bool{
	"/showplan":    true,
	"/show-plan":   true,
	"/planstatus":  true,
	"/plan-status": true,
}

func runPrompt(rt *runtime, ev *types.HookEvent) types.HookResponse {
	if !rt.cfg.Enabled {
		return types.Allow("")
	}

	prompt := strings.TrimSpace(ev.Prompt)

	if m := planRe.FindStringSubmatch(prompt); m != nil {
		return createPlanFromPrompt(rt, ev.SessionID, m[1])
	}

	if clearCommands[strings.ToLower(prompt)] {
		return clearPlanFromPrompt(rt, ev.SessionID)
	}

	if showCommands[strings.ToLower(prompt)] {
		return showPlanFromPrompt(rt, ev.SessionID)
	}

	// Other commands and mentions pass through untouched.
	if strings.HasPrefix(prompt, "/") || strings.HasPrefix(prompt, "@") {
		return types.Allow("")
	}

	return injectPlanContext(rt, ev.SessionID)
}

// createPlanFromPrompt turns "/plan <name>" into a fresh empty plan. The
// agent's first TodoWrite after this seeds the items.
func createPlanFromPrompt(rt *runtime, sessionID, name string) types.HookResponse {
	name = strings.TrimSpace(name)

	// Events without a session id all collapse onto the default sentinel;
	// minting an id keeps concurrent unnamed sessions from clobbering each
	// other's plans.
	if sessionID == types.DefaultSessionID {
		sessionID = uuid.NewString()
	}

	plan := &types.PlanState{
		SessionID:  sessionID,
		PlanSource: "command",
		Name:       name,
		Items:      []types.TaskItem{},
	}
	if err := rt.store.SavePlan(plan); err != nil {
		rt.log.Printf("cannot save plan %q: %v", name, err)
		return types.Allow("")
	}
	if err := rt.store.SetActivePlan(&types.ActivePlan{SessionID: sessionID, Name: name}); err != nil {
		rt.log.Printf("cannot update active plan: %v", err)
	}

	rt.log.Printf("session %s: created plan %q from prompt", sessionID, name)
	return types.Allow(fmt.Sprintf(
		"Plan %q initialized. Use the TodoWrite tool to lay out its tasks; stopping is gated until all of them are complete.", name))
}

func clearPlanFromPrompt(rt *runtime, sessionID string) types.HookResponse {
	plan, _ := rt.resolver.Resolve(sessionID)
	if plan != nil {
		if err := rt.store.DeletePlan(plan.SessionID); err != nil {
			rt.log.Printf("cannot delete plan for %s: %v", plan.SessionID, err)
		}
	}
	rt.store.ClearActivePlan()
	rt.store.ClearStopAttempts(sessionID)

	rt.log.Printf("session %s: plan cleared from prompt", sessionID)
	return types.Allow("Plan cleared. Stop gating is inactive until a new plan is created.")
}

func showPlanFromPrompt(rt *runtime, sessionID string) types.HookResponse {
	plan, isFallback := rt.resolver.Resolve(sessionID)
	if plan == nil || len(plan.Items) == 0 {
		return types.Allow("No active plan.")
	}

	completed, total := plan.Progress()
	var b strings.Builder
	fmt.Fprintf(&b, "Plan: %s (%d/%d complete)", planTitle(plan), completed, total)
	if isFallback {
		fmt.Fprintf(&b, " [from session %s]", plan.SessionID)
	}
	b.WriteString("\n")
	for _, item := range plan.Items {
		mark := " "
		if item.Status.IsTerminal() {
			mark = "x"
		} else if item.Status == types.StatusInProgress {
			mark = "~"
		}
		fmt.Fprintf(&b, "  [%s] %s\n", mark, item.Task)
	}
	return types.Allow(b.String())
}

// injectPlanContext reminds the agent of the active plan on every normal
// prompt. After a blocked stop, or when running against another session's
// plan, the reminder escalates to the full task list with a ready-to-use
// TodoWrite payload.
func injectPlanContext(rt *runtime, sessionID string) types.HookResponse {
	plan, isFallback := rt.resolver.Resolve(sessionID)
	if plan == nil || len(plan.Items) == 0 {
		return types.Allow("")
	}

	incomplete := plan.IncompleteItems()
	if len(incomplete) == 0 {
		return types.Allow("")
	}

	attempts := rt.store.StopAttempts(sessionID)
	completed, total := plan.Progress()

	if attempts == 0 && !isFallback {
		return types.Allow(fmt.Sprintf(
			"Active plan %q: %d/%d tasks complete. Next: %s",
			planTitle(plan), completed, total, incomplete[0].Task))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ACTIVE PLAN: %s (%d/%d tasks complete)\n", planTitle(plan), completed, total)
	if isFallback {
		fmt.Fprintf(&b, "(carried over from session %s)\n", plan.SessionID)
	}

	if done := plan.CompletedItems(); len(done) > 0 {
		b.WriteString("\nCOMPLETED:\n")
		for _, item := range done {
			fmt.Fprintf(&b, "  [x] %s\n", item.Task)
		}
	}

	b.WriteString("\nREMAINING:\n")
	for i, item := range incomplete {
		marker := ""
		if i == 0 {
			marker = "  ← START HERE"
		}
		fmt.Fprintf(&b, "  [ ] %s%s\n", item.Task, marker)
	}

	b.WriteString("\nDO NOT attempt to stop until all tasks are complete.\n")
	b.WriteString("\nUse the TodoWrite tool with this list to resume tracking:\n")
	b.WriteString(todoPayload(plan))

	return types.Allow(b.String())
}

func planTitle(plan *types.PlanState) string {
	if plan.Name != "" {
		return plan.Name
	}
	return "(unnamed)"
}

// todoPayload renders the plan's actionable items as the JSON array the
// TodoWrite tool expects.
func todoPayload(plan *types.PlanState) string {
	var b strings.Builder
	b.WriteString("[\n")
	items := plan.ActionableItems()
	for i, item := range items {
		status := string(item.Status)
		if item.Status == types.StatusDone {
			status = string(types.StatusCompleted)
		}
		fmt.Fprintf(&b, "  {\"content\": %q, \"status\": %q, \"activeForm\": %q}", item.Task, status, activeForm(item.Task))
		if i < len(items)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]")
	return b.String()
}

// activeFormVerbs maps a leading imperative verb to its progressive form.
var activeFormVerbs = map[string]string{
	"fix":       "Fixing",
	"add":       "Adding",
	"create":    "Creating",
	"implement": "Implementing",
	"update":    "Updating",
	"remove":    "Removing",
	"delete":    "Deleting",
	"refactor":  "Refactoring",
	"test":      "Testing",
	"write":     "Writing",
	"review":    "Reviewing",
	"check":     "Checking",
	"verify":    "Verifying",
	"install":   "Installing",
	"configure": "Configuring",
	"deploy":    "Deploying",
	"run":       "Running",
	"build":     "Building",
	"document":  "Documenting",
	"clean":     "Cleaning",
	"migrate":   "Migrating",
	"merge":     "Merging",
	"push":      "Pushing",
	"debug":     "Debugging",
	"optimize":  "Optimizing",
	"rename":    "Renaming",
	"move":      "Moving",
	"set":       "Setting",
	"setup":     "Setting up",
}

// activeForm derives a present-continuous phrasing for a task.
func activeForm(task string) string {
	fields := strings.Fields(task)
	if len(fields) == 0 {
		return "Working on task"
	}
	first := strings.ToLower(fields[0])
	if form, ok := activeFormVerbs[first]; ok {
		rest := strings.Join(fields[1:], " ")
		if rest == "" {
			return form
		}
		return form + " " + rest
	}
	return "Working on: " + task
}

func init() {
	rootCmd.AddCommand(promptCmd)
}
