package types

import (
	"strings"
	"time"
)

// PlanState is the durable record of one plan's tasks, keyed by the session
// that created it. Other sessions may read and update it through the
// cross-session resolver; writes always go back to the owning session's record.
type PlanState struct {
	SessionID   string     `json:"session_id"`
	PlanSource  string     `json:"plan_source,omitempty"` // "command" or "file"
	PlanFile    string     `json:"plan_file,omitempty"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Items       []TaskItem `json:"items"`
	Format      string     `json:"format,omitempty"`

	// Running counters owned by the cost-accounting hook; read-only here.
	AccumulatedCost   float64 `json:"accumulated_cost,omitempty"`
	TotalInputTokens  int     `json:"total_input_tokens,omitempty"`
	TotalOutputTokens int     `json:"total_output_tokens,omitempty"`
	ToolCalls         int     `json:"tool_calls,omitempty"`

	// ValidationFailed latches after a failed validation run so the stop
	// gate does not re-run validation on every subsequent attempt.
	ValidationFailed bool `json:"validation_failed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskItem is one entry in a plan. IDs are assigned once and never change;
// item order is insertion order and defines which task is "next".
type TaskItem struct {
	ID     int    `json:"id"`
	Task   string `json:"task"`
	Status Status `json:"status"`

	// Actionable is a tri-state: nil means true. False marks template or
	// category lines that are kept for display but never block a stop.
	Actionable *bool  `json:"actionable,omitempty"`
	Section    string `json:"section,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	AddedBy     string     `json:"added_by,omitempty"`
	Severity    string     `json:"severity,omitempty"`
	Errors      []string   `json:"errors,omitempty"`
}

// IsActionable reports whether the item counts toward completion and blocking.
func (t *TaskItem) IsActionable() bool {
	return t.Actionable == nil || *t.Actionable
}

// NonActionable returns the value for TaskItem.Actionable on template items.
func NonActionable() *bool {
	b := false
	return &b
}

// IsReal reports whether the state holds an actual plan rather than an
// empty placeholder file.
func (p *PlanState) IsReal() bool {
	return p != nil && (p.Name != "" || p.SessionID != "")
}

// NextID returns max(existing id) + 1.
func (p *PlanState) NextID() int {
	max := 0
	for i := range p.Items {
		if p.Items[i].ID > max {
			max = p.Items[i].ID
		}
	}
	return max + 1
}

// FindExact returns the first item whose task text equals content,
// case-insensitively, or nil.
func (p *PlanState) FindExact(content string) *TaskItem {
	for i := range p.Items {
		if strings.EqualFold(p.Items[i].Task, content) {
			return &p.Items[i]
		}
	}
	return nil
}

// ActionableItems returns the items that count toward progress.
func (p *PlanState) ActionableItems() []TaskItem {
	var out []TaskItem
	for i := range p.Items {
		if p.Items[i].IsActionable() {
			out = append(out, p.Items[i])
		}
	}
	return out
}

// IncompleteItems returns actionable items that are not terminal, in plan
// order. The first entry is the next task.
func (p *PlanState) IncompleteItems() []TaskItem {
	var out []TaskItem
	for i := range p.Items {
		if p.Items[i].IsActionable() && !p.Items[i].Status.IsTerminal() {
			out = append(out, p.Items[i])
		}
	}
	return out
}

// CompletedItems returns actionable items that reached a terminal status.
func (p *PlanState) CompletedItems() []TaskItem {
	var out []TaskItem
	for i := range p.Items {
		if p.Items[i].IsActionable() && p.Items[i].Status.IsTerminal() {
			out = append(out, p.Items[i])
		}
	}
	return out
}

// Progress returns completed and total counts over actionable items.
func (p *PlanState) Progress() (completed, total int) {
	for i := range p.Items {
		if !p.Items[i].IsActionable() {
			continue
		}
		total++
		if p.Items[i].Status.IsTerminal() {
			completed++
		}
	}
	return completed, total
}

// ActivePlan is the pointer record naming which session's plan is the
// active one for cross-session fallback.
type ActivePlan struct {
	SessionID string    `json:"session_id"`
	PlanFile  string    `json:"plan_file,omitempty"`
	Name      string    `json:"name,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContinuationRecord is an immutable snapshot of an unfinished plan, written
// when its session ends and consumed at most once by an explicit resume.
type ContinuationRecord struct {
	SessionID       string     `json:"session_id"`
	PlanName        string     `json:"plan_name"`
	Items           []TaskItem `json:"items"`
	CompletedCount  int        `json:"completed_count"`
	TotalCount      int        `json:"total_count"`
	SavedAt         time.Time  `json:"saved_at"`
	AccumulatedCost float64    `json:"accumulated_cost,omitempty"`
	TotalTokens     int        `json:"total_tokens,omitempty"`
}

// SessionSummary is one entry in the append-only session history.
type SessionSummary struct {
	SessionID      string     `json:"session_id"`
	EndedAt        time.Time  `json:"ended_at"`
	PlanName       string     `json:"plan_name,omitempty"`
	ItemsTotal     int        `json:"items_total"`
	ItemsCompleted int        `json:"items_completed"`
	ArchivePath    string     `json:"archive_path,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
}

// ValidationWarnings is a one-shot note left by the reconciler's validation
// side effect for the stop gate to surface. Reading it deletes it.
type ValidationWarnings struct {
	Errors  []string  `json:"errors"`
	Source  string    `json:"source,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}
