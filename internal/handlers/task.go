package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/dto"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/services"
	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks *services.TaskService
	log   *zap.Logger
}

func NewTaskHandler(tasks *services.TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{
		tasks: tasks,
		log:   nopIfNil(log),
	}
}

func taskResult(outcome *services.TaskOutcome) dto.TaskResult {
	var result dto.TaskResult
	if outcome.Task != nil {
		task := dto.ToTaskDTO(*outcome.Task)
		result.Task = &task
	}
	if outcome.Project != nil {
		progress := outcome.Project.New
		result.ProjectProgress = &progress
	}
	return result
}

// CreateTask creates a new task in a project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		ProjectID   uint64              `json:"project_id" binding:"required"`
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		Priority    models.TaskPriority `json:"priority"`
		DueDate     *string             `json:"due_date"`
		AssigneeID  *uint64             `json:"assignee_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dueDate, err := dto.ParseOptionalDate(req.DueDate)
	if err != nil {
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidField, err.Error())
		return
	}

	outcome, err := h.tasks.CreateTask(c.Request.Context(), services.CreateTaskInput{
		ProjectID:   req.ProjectID,
		ActorID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     dueDate,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, outcome.Message, taskResult(outcome))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "task")
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "OK", dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. A due_date of null clears the date.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "task")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		Status      *models.TaskStatus   `json:"status"`
		Priority    *models.TaskPriority `json:"priority"`
		// raw so that an explicit null can be told apart from an absent key
		DueDate  json.RawMessage `json:"due_date"`
		Progress *int            `json:"progress"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		TaskID:      taskID,
		ActorID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Progress:    req.Progress,
	}

	if len(req.DueDate) > 0 {
		if string(req.DueDate) == "null" {
			input.ClearDueDate = true
		} else {
			var raw string
			if err := json.Unmarshal(req.DueDate, &raw); err != nil {
				apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidField, "due_date must be a date string or null")
				return
			}
			due, err := dto.ParseDate(raw)
			if err != nil {
				apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidField, err.Error())
				return
			}
			input.DueDate = &due
		}
	}

	outcome, err := h.tasks.UpdateTask(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, outcome.Message, taskResult(outcome))
}

// CompleteTask marks a task as done
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "task")
	if !ok {
		return
	}

	outcome, err := h.tasks.CompleteTask(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, outcome.Message, taskResult(outcome))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "task")
	if !ok {
		return
	}

	outcome, err := h.tasks.DeleteTask(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, outcome.Message, taskResult(outcome))
}

// UpdateDueDate changes a task's due date; null or absent clears it
func (h *TaskHandler) UpdateDueDate(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "task")
	if !ok {
		return
	}

	type DueDateRequest struct {
		DueDate *string `json:"due_date"`
	}

	var req DueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dueDate, err := dto.ParseOptionalDate(req.DueDate)
	if err != nil {
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidField, err.Error())
		return
	}

	outcome, err := h.tasks.UpdateDueDate(c.Request.Context(), services.TaskDueDateInput{
		TaskID:  taskID,
		ActorID: userID,
		DueDate: dueDate,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, outcome.Message, taskResult(outcome))
}

// UpdateProgress records progress on behalf of user_id, which must be the caller
func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "task")
	if !ok {
		return
	}

	type ProgressRequest struct {
		Progress *int   `json:"progress" binding:"required"`
		UserID   uint64 `json:"user_id" binding:"required"`
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	outcome, err := h.tasks.UpdateProgress(c.Request.Context(), services.UpdateProgressInput{
		TaskID:   taskID,
		ActorID:  userID,
		UserID:   req.UserID,
		Progress: *req.Progress,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, outcome.Message, taskResult(outcome))
}
