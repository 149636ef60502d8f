package models

// AllTaskStatuses returns every known task status.
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusBacklog,
		TaskStatusTodo,
		TaskStatusInProgress,
		TaskStatusReview,
		TaskStatusDone,
		TaskStatusCancelled,
		TaskStatusArchived,
	}
}

// IsValid reports whether s is a known status value.
func (s TaskStatus) IsValid() bool {
	for _, known := range AllTaskStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s can no longer be left.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCancelled || s == TaskStatusArchived
}

// CanTransitionTo reports whether a user-initiated update may move a task
// from s to target. BACKLOG is only entered by the project due-date cascade,
// and terminal statuses are never left.
//
//	BACKLOG ─┐
//	         ▼
//	TODO ⇄ IN_PROGRESS ⇄ REVIEW ⇄ DONE
//	  └──────────┴──────────┴───────┴──▶ CANCELLED | ARCHIVED
func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	if s == target {
		return true
	}
	if s.IsTerminal() || target == TaskStatusBacklog {
		return false
	}
	return true
}

// SkippedByCascade reports whether a project due-date cascade leaves tasks
// in status s untouched: finished, terminal and backlogged tasks.
func (s TaskStatus) SkippedByCascade() bool {
	return s == TaskStatusDone || s == TaskStatusBacklog || s.IsTerminal()
}
