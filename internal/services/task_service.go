package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskService handles task mutations and keeps the owning project's progress
// in step with them.
type TaskService struct {
	store      *repository.Store
	aggregator *ProgressAggregator
	effects    sideEffects
}

// NewTaskService creates a new TaskService
func NewTaskService(store *repository.Store, aggregator *ProgressAggregator, emitter Emitter, log *zap.Logger) *TaskService {
	return &TaskService{
		store:      store,
		aggregator: aggregator,
		effects:    newSideEffects(emitter, log),
	}
}

// TaskOutcome is the result of a successful task operation.
type TaskOutcome struct {
	Message string
	Task    *models.Task
	// NoOp is set when nothing was written.
	NoOp bool
	// Project is set when the operation recomputed the project's progress.
	Project *ProgressChange
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	ActorID     uint64
	Title       string
	Description string
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssigneeID  *uint64
}

// UpdateTaskInput lists the fields a caller may change. Nil means unchanged.
type UpdateTaskInput struct {
	TaskID       uint64
	ActorID      uint64
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	Progress     *int
}

// TaskDueDateInput represents input for changing a task's due date. A nil
// DueDate clears it.
type TaskDueDateInput struct {
	TaskID  uint64
	ActorID uint64
	DueDate *time.Time
}

// UpdateProgressInput represents a progress report. UserID is the principal
// the report is made for and must match the caller.
type UpdateProgressInput struct {
	TaskID   uint64
	ActorID  uint64
	UserID   uint64
	Progress int
}

// CreateTask creates a task in a project and recomputes the project's progress.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*TaskOutcome, error) {
	if err := requirePrincipal(input.ActorID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalidField("title is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, invalidField("invalid priority %q", priority)
	}

	project, err := loadProject(s.store, input.ProjectID)
	if err != nil {
		return nil, err
	}

	if !project.IsOwnedBy(input.ActorID) && !project.IsPublic {
		return nil, forbidden("only the project owner can add tasks to this project")
	}

	if input.DueDate != nil {
		if dayBefore(*input.DueDate, time.Now()) {
			return nil, dateOutOfRange("due date cannot be in the past")
		}
		if project.DueDate != nil && dayAfter(*input.DueDate, *project.DueDate) {
			return nil, dateOutOfRange("due date cannot be after the project due date (%s)", formatDate(project.DueDate))
		}
	}

	if input.AssigneeID != nil {
		if _, err := s.store.Users.FindByID(*input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, invalidField("assignee %d does not exist", *input.AssigneeID)
			}
			return nil, fmt.Errorf("failed to find assignee: %w", err)
		}
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
		DueDate:     input.DueDate,
		ProjectID:   project.ID,
		CreatorID:   input.ActorID,
		AssigneeID:  input.AssigneeID,
	}

	var change ProgressChange
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		change, err = s.aggregator.Recompute(tx, project.ID)
		if err != nil {
			return err
		}

		s.effects.activity(ctx, tx, ActivityInput{
			Type:      models.ActivityTaskCreated,
			Link:      taskLink(task.ID),
			Content:   fmt.Sprintf("Created task %q", task.Title),
			TaskID:    &task.ID,
			ProjectID: &project.ID,
			ActorID:   input.ActorID,
		})

		if task.AssigneeID != nil && *task.AssigneeID != input.ActorID {
			s.effects.notification(ctx, tx, NotificationInput{
				Title:   "New task assigned",
				Message: fmt.Sprintf("You were assigned to %q in %q", task.Title, project.Name),
				UserID:  *task.AssigneeID,
				Link:    taskLink(task.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := loadTask(s.store, task.ID, "Assignee")
	if err != nil {
		return nil, err
	}

	return &TaskOutcome{Message: "Task created successfully", Task: created, Project: &change}, nil
}

// GetTask returns a task visible to the caller.
func (s *TaskService) GetTask(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
	if err := requirePrincipal(actorID); err != nil {
		return nil, err
	}

	task, err := loadTask(s.store, taskID, "Project", "Creator", "Assignee")
	if err != nil {
		return nil, err
	}

	if !canModifyTask(task, &task.Project, actorID) && !task.Project.IsPublic {
		return nil, forbidden("you do not have access to this task")
	}

	return task, nil
}

// UpdateTask applies a partial update to a task.
func (s *TaskService) UpdateTask(ctx context.Context, input UpdateTaskInput) (*TaskOutcome, error) {
	if err := requirePrincipal(input.ActorID); err != nil {
		return nil, err
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, invalidField("title cannot be empty")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, invalidField("invalid status %q", *input.Status)
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, invalidField("invalid priority %q", *input.Priority)
	}
	if input.Progress != nil && (*input.Progress < 0 || *input.Progress > 100) {
		return nil, invalidRange("progress must be between 0 and 100")
	}

	task, err := loadTask(s.store, input.TaskID, "Project")
	if err != nil {
		return nil, err
	}

	if !canModifyTask(task, &task.Project, input.ActorID) {
		return nil, forbidden("only the task creator, assignee or project owner can update this task")
	}

	fields := make(map[string]interface{})
	var changed []string

	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title != task.Title {
			fields["title"] = title
			changed = append(changed, "title")
		}
	}
	if input.Description != nil && *input.Description != task.Description {
		fields["description"] = *input.Description
		changed = append(changed, "description")
	}
	if input.Priority != nil && *input.Priority != task.Priority {
		fields["priority"] = *input.Priority
		changed = append(changed, "priority")
	}

	becameDone := false
	if input.Status != nil && *input.Status != task.Status {
		if !task.Status.CanTransitionTo(*input.Status) {
			return nil, invalidTransition("cannot move a task from %s to %s", task.Status, *input.Status)
		}
		fields["status"] = *input.Status
		changed = append(changed, "status")
		if *input.Status == models.TaskStatusDone {
			becameDone = true
			fields["completed_at"] = time.Now()
		}
	}

	if input.ClearDueDate {
		if task.DueDate != nil {
			fields["due_date"] = nil
			changed = append(changed, "due date")
		}
	} else if input.DueDate != nil && !sameDay(task.DueDate, input.DueDate) {
		if err := checkTaskDueDate(task, &task.Project, *input.DueDate); err != nil {
			return nil, err
		}
		fields["due_date"] = *input.DueDate
		changed = append(changed, "due date")
	}

	progressChanged := false
	if input.Progress != nil && *input.Progress != task.Progress {
		progressChanged = true
		fields["progress"] = *input.Progress
		changed = append(changed, "progress")
	}

	if len(fields) == 0 {
		return &TaskOutcome{Message: "No changes to apply", Task: task, NoOp: true}, nil
	}

	outcome := &TaskOutcome{Message: "Task updated successfully"}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.UpdateFields(task.ID, fields); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		if becameDone || progressChanged {
			change, err := s.aggregator.Recompute(tx, task.ProjectID)
			if err != nil {
				return err
			}
			outcome.Project = &change
		}

		title := task.Title
		if t, ok := fields["title"].(string); ok {
			title = t
		}
		s.effects.activity(ctx, tx, ActivityInput{
			Type:      models.ActivityTaskUpdated,
			Link:      taskLink(task.ID),
			Content:   fmt.Sprintf("Updated %s of %q", strings.Join(changed, ", "), title),
			TaskID:    &task.ID,
			ProjectID: &task.ProjectID,
			ActorID:   input.ActorID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome.Task, err = loadTask(s.store, task.ID)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// CompleteTask marks a task DONE with full progress.
func (s *TaskService) CompleteTask(ctx context.Context, taskID, actorID uint64) (*TaskOutcome, error) {
	if err := requirePrincipal(actorID); err != nil {
		return nil, err
	}

	task, err := loadTask(s.store, taskID)
	if err != nil {
		return nil, err
	}

	// the project owner alone may not complete someone else's task
	if task.CreatorID != actorID && !task.IsAssignedTo(actorID) {
		return nil, forbidden("only the task creator or assignee can complete this task")
	}

	if task.Status == models.TaskStatusDone {
		return &TaskOutcome{Message: "Task is already complete", Task: task, NoOp: true}, nil
	}
	if !task.Status.CanTransitionTo(models.TaskStatusDone) {
		return nil, invalidTransition("cannot complete a task that is %s", task.Status)
	}

	outcome := &TaskOutcome{Message: "Task completed"}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		err := tx.Tasks.UpdateFields(task.ID, map[string]interface{}{
			"status":       models.TaskStatusDone,
			"progress":     100,
			"completed_at": time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}

		change, err := s.aggregator.Recompute(tx, task.ProjectID)
		if err != nil {
			return err
		}
		outcome.Project = &change

		s.effects.activity(ctx, tx, ActivityInput{
			Type:      models.ActivityTaskCompleted,
			Link:      taskLink(task.ID),
			Content:   fmt.Sprintf("Completed task %q", task.Title),
			TaskID:    &task.ID,
			ProjectID: &task.ProjectID,
			ActorID:   actorID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome.Task, err = loadTask(s.store, task.ID)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// DeleteTask soft deletes a task and recomputes the project's progress.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID uint64) (*TaskOutcome, error) {
	if err := requirePrincipal(actorID); err != nil {
		return nil, err
	}

	task, err := loadTask(s.store, taskID, "Project")
	if err != nil {
		return nil, err
	}

	if task.CreatorID != actorID && !task.Project.IsOwnedBy(actorID) {
		return nil, forbidden("only the task creator or project owner can delete this task")
	}

	outcome := &TaskOutcome{Message: "Task deleted successfully"}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.Delete(task.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to delete task: %w", err)
		}

		change, err := s.aggregator.Recompute(tx, task.ProjectID)
		if err != nil {
			return err
		}
		outcome.Project = &change

		s.effects.activity(ctx, tx, ActivityInput{
			Type:      models.ActivityTaskDeleted,
			Link:      projectLink(task.ProjectID),
			Content:   fmt.Sprintf("Deleted task %q", task.Title),
			TaskID:    &task.ID,
			ProjectID: &task.ProjectID,
			ActorID:   actorID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// UpdateDueDate changes a task's due date within the project's bounds.
func (s *TaskService) UpdateDueDate(ctx context.Context, input TaskDueDateInput) (*TaskOutcome, error) {
	if err := requirePrincipal(input.ActorID); err != nil {
		return nil, err
	}

	task, err := loadTask(s.store, input.TaskID, "Project")
	if err != nil {
		return nil, err
	}

	if !canModifyTask(task, &task.Project, input.ActorID) {
		return nil, forbidden("only the project owner, task creator or assignee can change the due date")
	}

	if sameDay(task.DueDate, input.DueDate) {
		return &TaskOutcome{Message: "Due date is unchanged", Task: task, NoOp: true}, nil
	}

	var value interface{}
	if input.DueDate != nil {
		if err := checkTaskDueDate(task, &task.Project, *input.DueDate); err != nil {
			return nil, err
		}
		value = *input.DueDate
	}

	previous := task.DueDate
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.UpdateFields(task.ID, map[string]interface{}{"due_date": value}); err != nil {
			return fmt.Errorf("failed to update due date: %w", err)
		}

		s.effects.activity(ctx, tx, ActivityInput{
			Type:      models.ActivityTaskDueDateChanged,
			Link:      taskLink(task.ID),
			Content:   fmt.Sprintf("Changed due date of %q from %s to %s", task.Title, formatDate(previous), formatDate(input.DueDate)),
			TaskID:    &task.ID,
			ProjectID: &task.ProjectID,
			ActorID:   input.ActorID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := loadTask(s.store, task.ID)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Due date set to %s", formatDate(input.DueDate))
	if input.DueDate == nil {
		message = "Due date cleared"
	}
	return &TaskOutcome{Message: message, Task: updated}, nil
}

// UpdateProgress sets a task's progress, derives its status and recomputes
// the project's progress.
func (s *TaskService) UpdateProgress(ctx context.Context, input UpdateProgressInput) (*TaskOutcome, error) {
	if err := requirePrincipal(input.ActorID); err != nil {
		return nil, err
	}

	if input.ActorID != input.UserID {
		return nil, forbidden("progress can only be reported by the requesting user")
	}

	if input.Progress < 0 || input.Progress > 100 {
		return nil, invalidRange("progress must be between 0 and 100")
	}

	task, err := loadTask(s.store, input.TaskID, "Project")
	if err != nil {
		return nil, err
	}

	if !canModifyTask(task, &task.Project, input.ActorID) {
		return nil, forbidden("only the task creator, assignee or project owner can update progress")
	}

	if input.Progress == task.Progress {
		return &TaskOutcome{Message: "Progress is unchanged", Task: task, NoOp: true}, nil
	}

	status := DeriveStatus(task.Status, input.Progress)
	fields := map[string]interface{}{
		"progress": input.Progress,
		"status":   status,
	}
	if status == models.TaskStatusDone && task.Status != models.TaskStatusDone {
		fields["completed_at"] = time.Now()
	}

	content := fmt.Sprintf("Progress of %q changed from %d%% to %d%%", task.Title, task.Progress, input.Progress)
	if status != task.Status {
		content += fmt.Sprintf(", status changed from %s to %s", task.Status, status)
	}

	outcome := &TaskOutcome{Message: fmt.Sprintf("Progress updated to %d%%", input.Progress)}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.UpdateFields(task.ID, fields); err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}

		change, err := s.aggregator.Recompute(tx, task.ProjectID)
		if err != nil {
			return err
		}
		outcome.Project = &change

		s.effects.activity(ctx, tx, ActivityInput{
			Type:      models.ActivityTaskProgressChanged,
			Link:      taskLink(task.ID),
			Content:   content,
			TaskID:    &task.ID,
			ProjectID: &task.ProjectID,
			ActorID:   input.ActorID,
		})

		if change.Changed {
			s.effects.activity(ctx, tx, ActivityInput{
				Type:      models.ActivityProjectProgressChanged,
				Link:      projectLink(task.ProjectID),
				Content:   fmt.Sprintf("Progress of project %q changed from %d%% to %d%%", task.Project.Name, change.Old, change.New),
				ProjectID: &task.ProjectID,
				ActorID:   input.ActorID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome.Task, err = loadTask(s.store, task.ID)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// canModifyTask reports whether userID is the task's creator, its assignee
// or the owner of its project.
func canModifyTask(task *models.Task, project *models.Project, userID uint64) bool {
	return task.CreatorID == userID || task.IsAssignedTo(userID) || project.IsOwnedBy(userID)
}

// checkTaskDueDate validates a new due date against the project's due date
// and the task's creation day.
func checkTaskDueDate(task *models.Task, project *models.Project, due time.Time) error {
	if project.DueDate != nil && dayAfter(due, *project.DueDate) {
		return dateOutOfRange("due date cannot be after the project due date (%s)", formatDate(project.DueDate))
	}
	if dayBefore(due, task.CreatedAt) {
		return dateOutOfRange("due date cannot be before the task creation date (%s)", formatDate(&task.CreatedAt))
	}
	return nil
}

func loadTask(store *repository.Store, id uint64, preload ...string) (*models.Task, error) {
	task, err := store.Tasks.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func loadProject(store *repository.Store, id uint64, preload ...string) (*models.Project, error) {
	project, err := store.Projects.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
