package services

import "github.com/yukikurage/project-task-api/internal/models"

// DeriveStatus returns the status a task should have once its progress is set
// to progress. Terminal statuses never move and REVIEW is kept for partial
// progress.
func DeriveStatus(old models.TaskStatus, progress int) models.TaskStatus {
	switch {
	case old.IsTerminal():
		return old
	case progress >= 100:
		return models.TaskStatusDone
	case progress <= 0:
		if old == models.TaskStatusDone {
			return models.TaskStatusTodo
		}
		return old
	case old == models.TaskStatusReview:
		return old
	default:
		return models.TaskStatusInProgress
	}
}
