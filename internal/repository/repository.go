package repository

import (
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// UpdateFields writes the given columns of a single task
	UpdateFields(id uint64, fields map[string]interface{}) error

	// Delete soft deletes a task
	Delete(id uint64) error

	// CascadeDueDate moves the due date of the given tasks, optionally forcing a status
	CascadeDueDate(ids []uint64, dueDate time.Time, status *models.TaskStatus) error

	// AverageProgress returns the mean progress of a project's live tasks, 0 when it has none
	AverageProgress(projectID uint64) (float64, error)
}

// ProgressSnapshot is the part of a project read by the progress roll-up.
type ProgressSnapshot struct {
	Progress int
	Version  uint64
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// FindForUpdate loads a project and its tasks, locking all of them until
	// the surrounding transaction ends
	FindForUpdate(id uint64) (*models.Project, error)

	// ListIDs returns the IDs of all live projects
	ListIDs() ([]uint64, error)

	// UpdateDueDate sets the project's due date and bumps its version
	UpdateDueDate(id uint64, dueDate *time.Time) error

	// ProgressSnapshot reads the stored progress and version
	ProgressSnapshot(id uint64) (*ProgressSnapshot, error)

	// CompareAndSwapProgress writes progress only if the version still matches
	CompareAndSwapProgress(id, version uint64, progress int) (bool, error)
}

// ActivityRepository defines the interface for the append-only activity log
type ActivityRepository interface {
	// Create appends an activity
	Create(activity *models.Activity) error

	// ListByProject lists a project's activities, newest first
	ListByProject(projectID uint64, params utils.PaginationParams) ([]models.Activity, int64, error)
}

// NotificationFilter holds filtering options for listing notifications
type NotificationFilter struct {
	UserID     uint64
	UnreadOnly bool
	Pagination utils.PaginationParams
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create stores a notification
	Create(notification *models.Notification) error

	// FindByID finds a notification by ID
	FindByID(id uint64) (*models.Notification, error)

	// List lists notifications for a user, newest first
	List(filter NotificationFilter) ([]models.Notification, int64, error)

	// MarkRead flags a notification as read
	MarkRead(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
