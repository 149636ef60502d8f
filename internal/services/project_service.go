package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/repository"
	"github.com/yukikurage/project-task-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService handles project operations, including the due-date cascade
// onto the project's tasks.
type ProjectService struct {
	store   *repository.Store
	effects sideEffects
	now     func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(store *repository.Store, emitter Emitter, log *zap.Logger) *ProjectService {
	return &ProjectService{
		store:   store,
		effects: newSideEffects(emitter, log),
		now:     time.Now,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	ActorID     uint64
	Name        string
	Description string
	StartDate   *time.Time
	DueDate     *time.Time
	EndDate     *time.Time
	IsPublic    bool
}

// ProjectDueDateInput represents input for changing a project's due date.
// A nil DueDate clears it.
type ProjectDueDateInput struct {
	ProjectID uint64
	ActorID   uint64
	DueDate   *time.Time
}

// ProjectOutcome is the result of a successful project operation.
type ProjectOutcome struct {
	Message string
	Project *models.Project
	NoOp    bool
	// Affected counts the tasks whose due date was moved.
	Affected int
	// Demoted counts the affected tasks moved to BACKLOG.
	Demoted int
}

// CreateProject creates a project owned by the caller.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*ProjectOutcome, error) {
	if err := requirePrincipal(input.ActorID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidField("name is required")
	}

	if input.StartDate != nil && input.DueDate != nil && dayBefore(*input.DueDate, *input.StartDate) {
		return nil, dateOutOfRange("due date cannot be before the start date (%s)", formatDate(input.StartDate))
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Status:      models.ProjectStatusOpen,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
		EndDate:     input.EndDate,
		IsPublic:    input.IsPublic,
		OwnerID:     input.ActorID,
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Projects.Create(project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ProjectOutcome{Message: "Project created successfully", Project: project}, nil
}

// GetProject returns a project and its tasks if the caller may see it.
func (s *ProjectService) GetProject(ctx context.Context, projectID, actorID uint64) (*models.Project, error) {
	if err := requirePrincipal(actorID); err != nil {
		return nil, err
	}

	project, err := loadProject(s.store, projectID, "Tasks")
	if err != nil {
		return nil, err
	}

	if !project.IsOwnedBy(actorID) && !project.IsPublic {
		return nil, forbidden("you do not have access to this project")
	}

	return project, nil
}

// ListActivities returns a project's activity feed, newest first.
func (s *ProjectService) ListActivities(ctx context.Context, projectID, actorID uint64, params utils.PaginationParams) ([]models.Activity, int64, error) {
	if _, err := s.GetProject(ctx, projectID, actorID); err != nil {
		return nil, 0, err
	}

	activities, total, err := s.store.Activities.ListByProject(projectID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, total, nil
}

// UpdateDueDate changes a project's due date and pulls every open task that
// would miss it onto the new date. When the new date has already passed,
// those tasks are also moved to BACKLOG.
func (s *ProjectService) UpdateDueDate(ctx context.Context, input ProjectDueDateInput) (*ProjectOutcome, error) {
	if err := requirePrincipal(input.ActorID); err != nil {
		return nil, err
	}

	outcome := &ProjectOutcome{}
	newDate := formatDate(input.DueDate)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		// project and tasks stay locked until commit so no task can slip past
		// the new date unseen
		project, err := tx.Projects.FindForUpdate(input.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("failed to find project: %w", err)
		}

		if !project.IsOwnedBy(input.ActorID) {
			return forbidden("only the project owner can change the project due date")
		}

		if sameDay(project.DueDate, input.DueDate) {
			outcome.Message = "Project due date is unchanged"
			outcome.Project = project
			outcome.NoOp = true
			return nil
		}

		if input.DueDate != nil && project.StartDate != nil && dayBefore(*input.DueDate, *project.StartDate) {
			return dateOutOfRange("due date cannot be before the project start date (%s)", formatDate(project.StartDate))
		}

		affected := affectedByDueDate(project.Tasks, input.DueDate)
		demote := input.DueDate != nil && dayBefore(*input.DueDate, s.now())

		ids := make([]uint64, 0, len(affected))
		for _, task := range affected {
			ids = append(ids, task.ID)
		}

		outcome.Affected = len(affected)
		if demote {
			outcome.Demoted = len(affected)
		}

		if err := tx.Projects.UpdateDueDate(project.ID, input.DueDate); err != nil {
			return fmt.Errorf("failed to update project due date: %w", err)
		}

		if len(ids) > 0 {
			var status *models.TaskStatus
			if demote {
				backlog := models.TaskStatusBacklog
				status = &backlog
			}
			if err := tx.Tasks.CascadeDueDate(ids, *input.DueDate, status); err != nil {
				return fmt.Errorf("failed to cascade due date: %w", err)
			}
		}

		for i := range affected {
			task := affected[i]
			content := fmt.Sprintf("Due date of %q moved from %s to %s by the project deadline change",
				task.Title, formatDate(task.DueDate), newDate)
			if demote {
				content += fmt.Sprintf(", status changed from %s to %s", task.Status, models.TaskStatusBacklog)
			}
			s.effects.activity(ctx, tx, ActivityInput{
				Type:      models.ActivityTaskDueDateChanged,
				Link:      taskLink(task.ID),
				Content:   content,
				TaskID:    &task.ID,
				ProjectID: &project.ID,
				ActorID:   input.ActorID,
			})

			if task.AssigneeID != nil && *task.AssigneeID != input.ActorID {
				message := fmt.Sprintf("The due date of %q was moved to %s", task.Title, newDate)
				if demote {
					message += " and the task was moved to the backlog"
				}
				s.effects.notification(ctx, tx, NotificationInput{
					Title:   "Task due date changed",
					Message: message,
					UserID:  *task.AssigneeID,
					Link:    taskLink(task.ID),
				})
			}
		}

		s.effects.activity(ctx, tx, ActivityInput{
			Type:      models.ActivityProjectDueDateChanged,
			Link:      projectLink(project.ID),
			Content:   fmt.Sprintf("Due date of project %q changed from %s to %s", project.Name, formatDate(project.DueDate), newDate),
			ProjectID: &project.ID,
			ActorID:   input.ActorID,
		})

		s.effects.notification(ctx, tx, NotificationInput{
			Title:   "Project due date changed",
			Message: fmt.Sprintf("The due date of %q is now %s; %d task(s) affected", project.Name, newDate, outcome.Affected),
			UserID:  project.OwnerID,
			Link:    projectLink(project.ID),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome.NoOp {
		return outcome, nil
	}

	outcome.Project, err = loadProject(s.store, input.ProjectID)
	if err != nil {
		return nil, err
	}
	outcome.Message = cascadeMessage(input.DueDate, outcome.Affected, outcome.Demoted)
	return outcome, nil
}

// affectedByDueDate selects the tasks due on a later day than due that the
// cascade may move. Clearing the date affects none.
func affectedByDueDate(tasks []models.Task, due *time.Time) []models.Task {
	if due == nil {
		return nil
	}

	var affected []models.Task
	for _, task := range tasks {
		if task.DueDate == nil || !dayAfter(*task.DueDate, *due) {
			continue
		}
		if task.Status.SkippedByCascade() {
			continue
		}
		affected = append(affected, task)
	}
	return affected
}

func cascadeMessage(due *time.Time, affected, demoted int) string {
	if due == nil {
		return "Project due date cleared"
	}
	msg := fmt.Sprintf("Project due date set to %s; %d task(s) updated", formatDate(due), affected)
	if demoted > 0 {
		msg += fmt.Sprintf(", %d moved to backlog", demoted)
	}
	return msg
}
