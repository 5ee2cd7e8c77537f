// Package session decides which plan state an invocation should operate on.
// Session ids change between agent conversations, so a caller without a plan
// of its own falls back to the plan named by the active-plan pointer.
package session

import (
	"github.com/dmelton/plangate/internal/store"
	"github.com/dmelton/plangate/internal/types"
)

// Resolver maps a calling session to the plan state it should treat as
// active. It never returns an error: any unreadable candidate is skipped
// and absence is a valid outcome.
type Resolver struct {
	store store.Store
}

// NewResolver returns a resolver over the given store.
func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve returns the plan for sessionID, falling back to the active plan
// from another session when the caller has none of its own. The second
// return is true on fallback, which tells callers the invoking session has
// never seen this plan and needs full context re-announced.
func (r *Resolver) Resolve(sessionID string) (*types.PlanState, bool) {
	if own := r.store.LoadPlan(sessionID); own.IsReal() {
		return own, false
	}

	active := r.store.ActivePlan()
	if active != nil && active.SessionID != "" && active.SessionID != sessionID {
		if plan := r.store.LoadPlan(active.SessionID); plan != nil {
			return plan, true
		}
	}

	return nil, false
}

// FindMostRecent scans all stored plans and returns the one with the latest
// updated_at (falling back to created_at), or nil. Diagnostic paths only.
func (r *Resolver) FindMostRecent() *types.PlanState {
	var best *types.PlanState
	for _, id := range r.store.Sessions() {
		plan := r.store.LoadPlan(id)
		if plan == nil || (plan.Name == "" && len(plan.Items) == 0) {
			continue
		}
		ts := plan.UpdatedAt
		if ts.IsZero() {
			ts = plan.CreatedAt
		}
		if best == nil {
			best = plan
			continue
		}
		bestTS := best.UpdatedAt
		if bestTS.IsZero() {
			bestTS = best.CreatedAt
		}
		if ts.After(bestTS) {
			best = plan
		}
	}
	return best
}
