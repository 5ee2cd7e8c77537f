// Package reconcile converges the stored plan with the agent's self-reported
// todo list. Signals flow one way: each reported todo is matched into a plan
// slot, never the reverse.
package reconcile

import (
	"context"
	"time"

	"github.com/dmelton/plangate/internal/config"
	"github.com/dmelton/plangate/internal/logs"
	"github.com/dmelton/plangate/internal/match"
	"github.com/dmelton/plangate/internal/session"
	"github.com/dmelton/plangate/internal/store"
	"github.com/dmelton/plangate/internal/types"
	"github.com/dmelton/plangate/internal/validate"
)

// Result summarizes what one reconciliation pass changed.
type Result struct {
	Seeded    int // items created on an empty plan
	Updated   int // exact matches whose status changed
	Fuzzy     int // fuzzy matches marked completed
	Appended  int // unmatched signals added as new items
	Regressed int // terminal items moved back to non-terminal
}

// Changed reports whether the plan was mutated.
func (r Result) Changed() bool {
	return r.Seeded+r.Updated+r.Fuzzy+r.Appended+r.Regressed > 0
}

// Reconciler applies signal batches to the resolved plan state.
type Reconciler struct {
	store     store.Store
	resolver  *session.Resolver
	scorer    match.Scorer
	threshold float64
	runner    *validate.Runner
	checks    []config.ValidationCommand
	log       *logs.Logger
}

// New builds a reconciler. runner may be nil to disable the validation
// side effect.
func New(s store.Store, resolver *session.Resolver, scorer match.Scorer, threshold float64, runner *validate.Runner, checks []config.ValidationCommand, log *logs.Logger) *Reconciler {
	if threshold <= 0 {
		threshold = match.DefaultThreshold
	}
	return &Reconciler{
		store:     s,
		resolver:  resolver,
		scorer:    scorer,
		threshold: threshold,
		runner:    runner,
		checks:    checks,
		log:       log,
	}
}

// Apply reconciles a batch of signals against the plan resolved for the
// calling session. With no plan it is a no-op: only an explicit plan
// command creates plans. The mutated plan is saved back under its owning
// session, which may differ from the caller's on fallback.
func (r *Reconciler) Apply(ctx context.Context, sessionID string, signals []types.Signal) Result {
	var result Result

	plan, isFallback := r.resolver.Resolve(sessionID)
	if plan == nil {
		r.log.Printf("session %s: no plan to reconcile against", sessionID)
		return result
	}
	if isFallback {
		r.log.Printf("session %s: reconciling against fallback plan from %s", sessionID, plan.SessionID)
	}

	if len(plan.Items) == 0 {
		r.seed(plan, signals, &result)
	} else {
		for _, sig := range signals {
			if sig.Content == "" {
				continue
			}
			r.applyOne(plan, sig, &result)
		}
	}

	if result.Changed() {
		if err := r.store.SavePlan(plan); err != nil {
			r.log.Printf("session %s: cannot save plan: %v", plan.SessionID, err)
			return result
		}
	}

	completions := result.Updated + result.Fuzzy
	if completions > 0 && r.runner != nil && len(r.checks) > 0 {
		r.checkAfterCompletions(ctx, plan.SessionID)
	}

	return result
}

// seed turns each signal into a new item in arrival order, preserving the
// reported status.
func (r *Reconciler) seed(plan *types.PlanState, signals []types.Signal, result *Result) {
	for _, sig := range signals {
		if sig.Content == "" {
			continue
		}
		plan.Items = append(plan.Items, newItem(plan.NextID(), sig))
		result.Seeded++
	}
	r.log.Printf("session %s: seeded %d items from todo list", plan.SessionID, result.Seeded)
}

func (r *Reconciler) applyOne(plan *types.PlanState, sig types.Signal, result *Result) {
	if item := plan.FindExact(sig.Content); item != nil {
		r.updateExact(plan, item, sig, result)
		return
	}

	if sig.Status.IsTerminal() {
		if item := r.bestFuzzy(plan, sig.Content); item != nil {
			complete(item)
			result.Fuzzy++
			r.log.Printf("session %s: fuzzy-matched %q to item %d %q", plan.SessionID, trunc(sig.Content, 50), item.ID, trunc(item.Task, 50))
			return
		}
	}

	// No task exists for this signal: append it so ad hoc work still gets
	// credited instead of blocking termination.
	plan.Items = append(plan.Items, newItem(plan.NextID(), sig))
	result.Appended++
}

func (r *Reconciler) updateExact(plan *types.PlanState, item *types.TaskItem, sig types.Signal, result *Result) {
	if item.Status == sig.Status {
		return
	}
	if item.Status.IsTerminal() {
		if sig.Status.IsTerminal() {
			return
		}
		// Regression is allowed as a correction, but flagged distinctly.
		r.log.Printf("session %s: status regressed on item %d %q: %s -> %s", plan.SessionID, item.ID, trunc(item.Task, 50), item.Status, sig.Status)
		item.Status = sig.Status
		item.CompletedAt = nil
		result.Regressed++
		return
	}
	if sig.Status.IsTerminal() {
		complete(item)
	} else {
		item.Status = sig.Status
	}
	result.Updated++
}

// bestFuzzy scores every non-terminal item and returns the best at or above
// the threshold. Ties keep the first-encountered item in plan order.
func (r *Reconciler) bestFuzzy(plan *types.PlanState, content string) *types.TaskItem {
	var best *types.TaskItem
	bestScore := 0.0
	for i := range plan.Items {
		item := &plan.Items[i]
		if item.Status.IsTerminal() {
			continue
		}
		score := r.scorer.Score(content, item.Task)
		if score >= r.threshold && score > bestScore {
			bestScore = score
			best = item
		}
	}
	return best
}

// checkAfterCompletions runs the configured checks and leaves a one-shot
// warnings note for the stop gate. Never blocks, never propagates failure.
func (r *Reconciler) checkAfterCompletions(ctx context.Context, sessionID string) {
	results := r.runner.Run(ctx, r.checks)
	var errs []string
	for _, res := range results {
		errs = append(errs, res.Errors...)
	}
	if len(errs) == 0 {
		return
	}
	w := &types.ValidationWarnings{Errors: errs, Source: "reconcile"}
	if err := r.store.SaveWarnings(sessionID, w); err != nil {
		r.log.Printf("session %s: cannot save warnings: %v", sessionID, err)
	}
}

func newItem(id int, sig types.Signal) types.TaskItem {
	item := types.TaskItem{
		ID:      id,
		Task:    sig.Content,
		Status:  sig.Status,
		AddedBy: "sync",
	}
	if sig.Status.IsTerminal() {
		now := time.Now()
		item.CompletedAt = &now
	}
	return item
}

func complete(item *types.TaskItem) {
	item.Status = types.StatusCompleted
	now := time.Now()
	item.CompletedAt = &now
}

func trunc(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
