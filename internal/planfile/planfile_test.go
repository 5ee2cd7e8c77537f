package planfile

import (
	"testing"

	"github.com/dmelton/plangate/internal/types"
)

func TestIsPlanPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/project/plans/refactor.md", true},
		{"/project/plans/plan.json", true},
		{"/home/user/.claude/plans/next.md", true},
		{"/project/plans/notes.txt", false},
		{"/project/docs/refactor.md", false},
		{"/project/plan.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsPlanPath(tt.path); got != tt.want {
				t.Errorf("IsPlanPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseMarkdownCheckboxes(t *testing.T) {
	content := `# Plan: Auth Overhaul

Some prose describing the work.

- [ ] Add login endpoint
- [x] Create user model
* [X] Set up database
1. Numbered lines are not tasks
- Regular bullets are not tasks
`
	doc := parseMarkdown([]byte(content))

	if doc.Name != "Auth Overhaul" {
		t.Errorf("name = %q, want %q", doc.Name, "Auth Overhaul")
	}
	if len(doc.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(doc.Items))
	}
	if doc.Items[0].Status != types.StatusPending || doc.Items[0].Task != "Add login endpoint" {
		t.Errorf("unexpected first item: %+v", doc.Items[0])
	}
	if doc.Items[1].Status != types.StatusCompleted {
		t.Errorf("[x] should parse completed, got %q", doc.Items[1].Status)
	}
	if doc.Items[2].Status != types.StatusCompleted {
		t.Errorf("[X] should parse completed, got %q", doc.Items[2].Status)
	}
	for i, item := range doc.Items {
		if item.ID != i+1 {
			t.Errorf("item %d has id %d, want %d", i, item.ID, i+1)
		}
		if !item.IsActionable() {
			t.Errorf("item %d should be actionable", i)
		}
	}
}

func TestParseMarkdownNonActionable(t *testing.T) {
	content := `# Plan: Site Audit

## Tasks
- [ ] Audit the homepage
- [~] Optional polish pass

## What to look for
- [ ] Performance problems
- [ ] Accessibility problems

## More tasks

For each module, document findings:
- [ ] Module findings entry

## Wrap up
- [ ] Write summary report
`
	doc := parseMarkdown([]byte(content))
	if len(doc.Items) != 6 {
		t.Fatalf("got %d items, want 6", len(doc.Items))
	}

	wantActionable := map[string]bool{
		"Audit the homepage":     true,
		"Optional polish pass":   false, // [~] glyph
		"Performance problems":   false, // template section
		"Accessibility problems": false,
		"Module findings entry":  false, // template context prose
		"Write summary report":   true,  // header resets template context
	}
	for _, item := range doc.Items {
		want, ok := wantActionable[item.Task]
		if !ok {
			t.Errorf("unexpected item %q", item.Task)
			continue
		}
		if item.IsActionable() != want {
			t.Errorf("item %q actionable = %v, want %v", item.Task, item.IsActionable(), want)
		}
	}
}

func TestParseMarkdownFrontmatter(t *testing.T) {
	content := `---
name: Release Prep
description: Everything before cutting v2
---
- [ ] Tag the release
`
	doc := parseMarkdown([]byte(content))
	if doc.Name != "Release Prep" {
		t.Errorf("name = %q, want %q", doc.Name, "Release Prep")
	}
	if doc.Description != "Everything before cutting v2" {
		t.Errorf("description = %q", doc.Description)
	}
	if len(doc.Items) != 1 || doc.Items[0].Task != "Tag the release" {
		t.Fatalf("unexpected items: %+v", doc.Items)
	}
}

func TestParseMarkdownUnnamed(t *testing.T) {
	doc := parseMarkdown([]byte("- [ ] Only a task\n"))
	if doc.Name != "Unnamed Plan" {
		t.Errorf("name = %q, want %q", doc.Name, "Unnamed Plan")
	}
}

func TestParseJSON(t *testing.T) {
	content := []byte(`{
		"name": "Migration",
		"items": [
			{"id": 3, "task": "Dump schema", "status": "completed"},
			{"task": "Apply migration"},
			{"task": "Verify row counts"}
		]
	}`)

	doc, err := Parse("/project/plans/migration.json", content)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Format != "json" {
		t.Errorf("format = %q, want json", doc.Format)
	}
	if len(doc.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(doc.Items))
	}
	if doc.Items[0].ID != 3 {
		t.Errorf("existing id changed to %d", doc.Items[0].ID)
	}
	if doc.Items[1].ID != 4 || doc.Items[2].ID != 5 {
		t.Errorf("missing ids not assigned past max: got %d and %d", doc.Items[1].ID, doc.Items[2].ID)
	}
	if doc.Items[1].Status != types.StatusPending {
		t.Errorf("missing status should default to pending, got %q", doc.Items[1].Status)
	}
}

func TestParseJSONMalformed(t *testing.T) {
	if _, err := Parse("/project/plans/bad.json", []byte("{not json")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestPreserveStatuses(t *testing.T) {
	doc := &Document{Items: []types.TaskItem{
		{ID: 1, Task: "Add login endpoint", Status: types.StatusPending},
		{ID: 2, Task: "Create user model", Status: types.StatusPending},
		{ID: 3, Task: "New task", Status: types.StatusPending},
	}}
	existing := &types.PlanState{Items: []types.TaskItem{
		{ID: 1, Task: "add LOGIN endpoint", Status: types.StatusCompleted},
		{ID: 2, Task: "Create user model", Status: types.StatusInProgress},
	}}

	PreserveStatuses(doc, existing)

	if doc.Items[0].Status != types.StatusCompleted {
		t.Errorf("completed status not preserved, got %q", doc.Items[0].Status)
	}
	if doc.Items[1].Status != types.StatusPending {
		t.Errorf("non-terminal stored status should not override file, got %q", doc.Items[1].Status)
	}
	if doc.Items[2].Status != types.StatusPending {
		t.Errorf("new task status changed to %q", doc.Items[2].Status)
	}
}
