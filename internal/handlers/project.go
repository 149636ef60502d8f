package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/dto"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/services"
	"github.com/yukikurage/project-task-api/internal/utils"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projects *services.ProjectService
	log      *zap.Logger
}

func NewProjectHandler(projects *services.ProjectService, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		log:      nopIfNil(log),
	}
}

// CreateProject creates a project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}

	type CreateProjectRequest struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		StartDate   *string `json:"start_date"`
		DueDate     *string `json:"due_date"`
		EndDate     *string `json:"end_date"`
		IsPublic    bool    `json:"is_public"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateProjectInput{
		ActorID:     userID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	var err error
	if input.StartDate, err = dto.ParseOptionalDate(req.StartDate); err != nil {
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidField, err.Error())
		return
	}
	if input.DueDate, err = dto.ParseOptionalDate(req.DueDate); err != nil {
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidField, err.Error())
		return
	}
	if input.EndDate, err = dto.ParseOptionalDate(req.EndDate); err != nil {
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidField, err.Error())
		return
	}

	outcome, err := h.projects.CreateProject(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, outcome.Message, dto.ToProjectDTO(*outcome.Project))
}

// GetProject returns a project with its tasks
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project")
	if !ok {
		return
	}

	project, err := h.projects.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "OK", dto.ToProjectDTO(*project))
}

// UpdateDueDate moves the project due date and cascades it onto the tasks
func (h *ProjectHandler) UpdateDueDate(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project")
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

	outcome, err := h.projects.UpdateDueDate(c.Request.Context(), services.ProjectDueDateInput{
		ProjectID: projectID,
		ActorID:   userID,
		DueDate:   dueDate,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, outcome.Message, dto.CascadeResult{
		Project:       dto.ToProjectDTO(*outcome.Project),
		AffectedTasks: outcome.Affected,
		DemotedTasks:  outcome.Demoted,
	})
}

// ListActivities returns the project's activity feed, newest first
func (h *ProjectHandler) ListActivities(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	activities, total, err := h.projects.ListActivities(c.Request.Context(), projectID, userID, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "OK", dto.ToActivityListResponse(activities, params, total))
}
