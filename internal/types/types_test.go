package types

import (
	"strings"
	"testing"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Status
	}{
		{name: "pending passes through", raw: "pending", want: StatusPending},
		{name: "in_progress passes through", raw: "in_progress", want: StatusInProgress},
		{name: "completed passes through", raw: "completed", want: StatusCompleted},
		{name: "done maps to completed", raw: "done", want: StatusCompleted},
		{name: "finished maps to completed", raw: "finished", want: StatusCompleted},
		{name: "complete maps to completed", raw: "complete", want: StatusCompleted},
		{name: "active maps to in_progress", raw: "active", want: StatusInProgress},
		{name: "started maps to in_progress", raw: "started", want: StatusInProgress},
		{name: "hyphenated in-progress maps to in_progress", raw: "in-progress", want: StatusInProgress},
		{name: "unknown defaults to pending", raw: "blocked", want: StatusPending},
		{name: "empty defaults to pending", raw: "", want: StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStatus(tt.raw); got != tt.want {
				t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if !StatusCompleted.IsTerminal() {
		t.Error("completed should be terminal")
	}
	if !StatusDone.IsTerminal() {
		t.Error("done should be terminal")
	}
	if StatusPending.IsTerminal() {
		t.Error("pending should not be terminal")
	}
	if StatusInProgress.IsTerminal() {
		t.Error("in_progress should not be terminal")
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name  string
		items []TaskItem
		want  int
	}{
		{name: "empty plan starts at 1", items: nil, want: 1},
		{name: "sequential ids", items: []TaskItem{{ID: 1}, {ID: 2}, {ID: 3}}, want: 4},
		{name: "gaps do not get reused", items: []TaskItem{{ID: 1}, {ID: 7}}, want: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PlanState{Items: tt.items}
			if got := p.NextID(); got != tt.want {
				t.Errorf("NextID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFindExact(t *testing.T) {
	p := &PlanState{Items: []TaskItem{
		{ID: 1, Task: "Fix the login bug"},
		{ID: 2, Task: "Write tests"},
	}}

	if item := p.FindExact("fix the LOGIN bug"); item == nil || item.ID != 1 {
		t.Errorf("expected case-insensitive match on item 1, got %+v", item)
	}
	if item := p.FindExact("Fix the login"); item != nil {
		t.Errorf("partial text should not match, got item %d", item.ID)
	}
}

func TestIncompleteItemsExcludesNonActionable(t *testing.T) {
	p := &PlanState{Items: []TaskItem{
		{ID: 1, Task: "Real task", Status: StatusPending},
		{ID: 2, Task: "Template line", Status: StatusPending, Actionable: NonActionable()},
		{ID: 3, Task: "Done task", Status: StatusCompleted},
		{ID: 4, Task: "Another real task", Status: StatusInProgress},
	}}

	got := p.IncompleteItems()
	if len(got) != 2 {
		t.Fatalf("IncompleteItems() returned %d items, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 4 {
		t.Errorf("expected items 1 and 4 in plan order, got %d and %d", got[0].ID, got[1].ID)
	}
}

func TestProgressCountsActionableOnly(t *testing.T) {
	p := &PlanState{Items: []TaskItem{
		{ID: 1, Status: StatusCompleted},
		{ID: 2, Status: StatusCompleted, Actionable: NonActionable()},
		{ID: 3, Status: StatusPending},
		{ID: 4, Status: StatusDone},
	}}

	completed, total := p.Progress()
	if completed != 2 || total != 3 {
		t.Errorf("Progress() = (%d, %d), want (2, 3)", completed, total)
	}
}

func TestIsReal(t *testing.T) {
	var nilPlan *PlanState
	if nilPlan.IsReal() {
		t.Error("nil plan should not be real")
	}
	if (&PlanState{}).IsReal() {
		t.Error("empty placeholder should not be real")
	}
	if !(&PlanState{SessionID: "abc"}).IsReal() {
		t.Error("plan with session id should be real")
	}
	if !(&PlanState{Name: "My Plan"}).IsReal() {
		t.Error("plan with name should be real")
	}
}

func TestDecodeHookEvent(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErr     bool
		wantSession string
		check       func(t *testing.T, ev *HookEvent)
	}{
		{
			name:        "missing session id defaults",
			input:       `{}`,
			wantSession: DefaultSessionID,
		},
		{
			name:        "todos accept content field",
			input:       `{"session_id":"s1","tool_input":{"todos":[{"content":"Fix bug","status":"in_progress"}]}}`,
			wantSession: "s1",
			check: func(t *testing.T, ev *HookEvent) {
				if len(ev.ToolInput.Todos) != 1 {
					t.Fatalf("got %d todos, want 1", len(ev.ToolInput.Todos))
				}
				if ev.ToolInput.Todos[0].Content != "Fix bug" || ev.ToolInput.Todos[0].Status != StatusInProgress {
					t.Errorf("unexpected todo: %+v", ev.ToolInput.Todos[0])
				}
			},
		},
		{
			name:        "todos accept task field and done status",
			input:       `{"session_id":"s2","tool_input":{"todos":[{"task":"Write tests","status":"done"}]}}`,
			wantSession: "s2",
			check: func(t *testing.T, ev *HookEvent) {
				todo := ev.ToolInput.Todos[0]
				if todo.Content != "Write tests" {
					t.Errorf("task field not mapped to content: %+v", todo)
				}
				if todo.Status != StatusCompleted {
					t.Errorf("done should normalize to completed, got %q", todo.Status)
				}
			},
		},
		{
			name:        "unknown status defaults to pending",
			input:       `{"tool_input":{"todos":[{"content":"Task","status":"waiting"}]}}`,
			wantSession: DefaultSessionID,
			check: func(t *testing.T, ev *HookEvent) {
				if ev.ToolInput.Todos[0].Status != StatusPending {
					t.Errorf("got status %q, want pending", ev.ToolInput.Todos[0].Status)
				}
			},
		},
		{
			name:    "malformed JSON errors",
			input:   `{"session_id":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeHookEvent(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.SessionID != tt.wantSession {
				t.Errorf("session id = %q, want %q", ev.SessionID, tt.wantSession)
			}
			if tt.check != nil {
				tt.check(t, ev)
			}
		})
	}
}

func TestHookResponseWrite(t *testing.T) {
	var b strings.Builder
	if err := Block("stop blocked").Write(&b); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got := strings.TrimSpace(b.String())
	want := `{"continue":false,"systemMessage":"stop blocked"}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	b.Reset()
	if err := Allow("").Write(&b); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got = strings.TrimSpace(b.String())
	want = `{"continue":true}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
