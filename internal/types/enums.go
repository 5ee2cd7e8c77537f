package types

// Status represents the lifecycle state of a task item.
// "completed" and "done" are synonyms; both count as terminal.
type Status string

const (
	// StatusPending indicates work has not started
	StatusPending Status = "pending"
	// StatusInProgress indicates work is currently underway
	StatusInProgress Status = "in_progress"
	// StatusCompleted indicates work has finished
	StatusCompleted Status = "completed"
	// StatusDone is an accepted synonym for completed
	StatusDone Status = "done"
)

// IsValid checks if a status value is valid
func (s Status) IsValid() bool {
	for _, valid := range AllStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status counts as complete
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusDone
}

// AllStatuses returns all valid status values
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted, StatusDone}
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// NormalizeStatus maps loosely-worded status strings onto the canonical enum.
// Unknown or empty values default to pending; nothing is rejected.
func NormalizeStatus(raw string) Status {
	switch Status(raw) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(raw)
	case StatusDone:
		return StatusCompleted
	}
	switch raw {
	case "finished", "complete":
		return StatusCompleted
	case "active", "started", "in-progress":
		return StatusInProgress
	}
	return StatusPending
}
