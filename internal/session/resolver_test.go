package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmelton/plangate/internal/store"
	"github.com/dmelton/plangate/internal/types"
)

func newTestStore(t *testing.T) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return s
}

func TestResolveOwnPlan(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	if err := s.SavePlan(&types.PlanState{SessionID: "s1", Name: "Own"}); err != nil {
		t.Fatal(err)
	}
	// A pointer at another session must not shadow the caller's own plan.
	if err := s.SetActivePlan(&types.ActivePlan{SessionID: "other"}); err != nil {
		t.Fatal(err)
	}

	plan, isFallback := r.Resolve("s1")
	if plan == nil || plan.Name != "Own" {
		t.Fatalf("expected own plan, got %+v", plan)
	}
	if isFallback {
		t.Error("own plan should not be a fallback")
	}
}

func TestResolveFallback(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	if err := s.SavePlan(&types.PlanState{SessionID: "earlier", Name: "Carried"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetActivePlan(&types.ActivePlan{SessionID: "earlier", Name: "Carried"}); err != nil {
		t.Fatal(err)
	}

	plan, isFallback := r.Resolve("new-session")
	if plan == nil || plan.SessionID != "earlier" {
		t.Fatalf("expected fallback to earlier session, got %+v", plan)
	}
	if !isFallback {
		t.Error("resolving another session's plan should report fallback")
	}
}

func TestResolveNoPlanAnywhere(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	plan, isFallback := r.Resolve("s1")
	if plan != nil || isFallback {
		t.Errorf("expected (nil, false), got (%+v, %v)", plan, isFallback)
	}
}

func TestResolvePointerAtSelf(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	// Pointer names the caller itself, but the caller has no plan file.
	if err := s.SetActivePlan(&types.ActivePlan{SessionID: "s1"}); err != nil {
		t.Fatal(err)
	}

	plan, isFallback := r.Resolve("s1")
	if plan != nil || isFallback {
		t.Errorf("self-pointing stale pointer should resolve to nothing, got (%+v, %v)", plan, isFallback)
	}
}

func TestResolvePointerAtMissingPlan(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	if err := s.SetActivePlan(&types.ActivePlan{SessionID: "gone"}); err != nil {
		t.Fatal(err)
	}

	plan, isFallback := r.Resolve("s1")
	if plan != nil || isFallback {
		t.Errorf("dangling pointer should resolve to nothing, got (%+v, %v)", plan, isFallback)
	}
}

func TestResolveCorruptOwnPlanFallsBack(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	// Corrupt own record reads as absent, so the pointer takes over.
	if err := os.WriteFile(filepath.Join(s.Dir(), "s1_plan_state.json"), []byte("{bad"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.SavePlan(&types.PlanState{SessionID: "earlier", Name: "Carried"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetActivePlan(&types.ActivePlan{SessionID: "earlier"}); err != nil {
		t.Fatal(err)
	}

	plan, isFallback := r.Resolve("s1")
	if plan == nil || !isFallback {
		t.Errorf("expected fallback past corrupt record, got (%+v, %v)", plan, isFallback)
	}
}

func TestFindMostRecent(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	if got := r.FindMostRecent(); got != nil {
		t.Errorf("empty store should yield nil, got %+v", got)
	}

	old := &types.PlanState{SessionID: "old", Name: "Old"}
	if err := s.SavePlan(old); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := s.SavePlan(&types.PlanState{SessionID: "new", Name: "New"}); err != nil {
		t.Fatal(err)
	}

	got := r.FindMostRecent()
	if got == nil || got.SessionID != "new" {
		t.Errorf("expected newest plan, got %+v", got)
	}
}
