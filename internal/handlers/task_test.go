package handlers

import (
	"net/http"

	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/dto"
	"github.com/yukikurage/project-task-api/internal/models"
)

func (suite *HandlerTestSuite) TestCreateTask_Success() {
	w, env := suite.do(http.MethodPost, "/api/tasks", suite.owner.ID, map[string]interface{}{
		"project_id":  suite.project.ID,
		"title":       "Write docs",
		"priority":    "HIGH",
		"due_date":    dayString(3),
		"assignee_id": suite.assignee.ID,
	})

	suite.Equal(http.StatusCreated, w.Code)
	suite.True(env.Success)
	suite.Equal("Task created successfully", env.Message)

	var result dto.TaskResult
	suite.decode(env, &result)
	suite.Require().NotNil(result.Task)
	suite.Equal("Write docs", result.Task.Title)
	suite.Equal(models.TaskPriorityHigh, result.Task.Priority)
	suite.Equal(models.TaskStatusTodo, result.Task.Status)
	suite.Require().NotNil(result.ProjectProgress)
	suite.Equal(0, *result.ProjectProgress)
}

func (suite *HandlerTestSuite) TestCreateTask_Validation() {
	w, env := suite.do(http.MethodPost, "/api/tasks", suite.owner.ID, map[string]interface{}{
		"project_id": suite.project.ID,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.False(env.Success)

	w, env = suite.do(http.MethodPost, "/api/tasks", suite.owner.ID, map[string]interface{}{
		"project_id": suite.project.ID,
		"title":      "Late",
		"due_date":   dayString(-2),
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apierrors.ErrCodeDateOutOfRange, env.Code)

	w, env = suite.do(http.MethodPost, "/api/tasks", suite.owner.ID, map[string]interface{}{
		"project_id": suite.project.ID,
		"title":      "Bad date",
		"due_date":   "next tuesday",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidField, env.Code)
}

func (suite *HandlerTestSuite) TestCreateTask_ForbiddenOnPrivateProject() {
	w, env := suite.do(http.MethodPost, "/api/tasks", suite.stranger.ID, map[string]interface{}{
		"project_id": suite.project.ID,
		"title":      "Sneaky",
	})

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal(apierrors.ErrCodeForbidden, env.Code)
	suite.Contains(env.Message, "Unauthorized")
}

func (suite *HandlerTestSuite) TestTaskRoutes_RequireSession() {
	task := suite.createTask("Private", 0, nil, nil)

	w, env := suite.do(http.MethodGet, taskURL(task.ID, ""), 0, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.False(env.Success)
}

func (suite *HandlerTestSuite) TestGetTask() {
	task := suite.createTask("Visible", 0, nil, &suite.assignee.ID)

	w, env := suite.do(http.MethodGet, taskURL(task.ID, ""), suite.assignee.ID, nil)
	suite.Equal(http.StatusOK, w.Code)
	var got dto.TaskDTO
	suite.decode(env, &got)
	suite.Equal(task.ID, got.ID)
	suite.Require().NotNil(got.Assignee)
	suite.Equal("assignee", got.Assignee.Username)

	w, _ = suite.do(http.MethodGet, taskURL(task.ID, ""), suite.stranger.ID, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, env = suite.do(http.MethodGet, taskURL(9999, ""), suite.owner.ID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Task not found", env.Message)

	w, env = suite.do(http.MethodGet, "/api/tasks/abc", suite.owner.ID, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Invalid task ID", env.Message)
}

func (suite *HandlerTestSuite) TestUpdateTask_FieldsAndClearDueDate() {
	task := suite.createTask("Draft", 0, nil, nil)
	due := dayString(5)

	w, env := suite.do(http.MethodPatch, taskURL(task.ID, ""), suite.owner.ID, map[string]interface{}{
		"title":    "Final",
		"due_date": due,
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	var result dto.TaskResult
	suite.decode(env, &result)
	suite.Equal("Final", result.Task.Title)
	suite.Require().NotNil(result.Task.DueDate)

	w, env = suite.do(http.MethodPatch, taskURL(task.ID, ""), suite.owner.ID, map[string]interface{}{
		"due_date": nil,
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	result = dto.TaskResult{}
	suite.decode(env, &result)
	suite.Nil(result.Task.DueDate)

	w, env = suite.do(http.MethodPatch, taskURL(task.ID, ""), suite.owner.ID, map[string]interface{}{})
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("No changes to apply", env.Message)
}

func (suite *HandlerTestSuite) TestUpdateTask_TerminalStatusConflict() {
	task := suite.createTask("Dropped", 0, nil, nil)
	suite.Require().NoError(suite.db.Model(task).Update("status", models.TaskStatusCancelled).Error)

	w, env := suite.do(http.MethodPatch, taskURL(task.ID, ""), suite.owner.ID, map[string]interface{}{
		"status": "TODO",
	})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidOperation, env.Code)
}

func (suite *HandlerTestSuite) TestCompleteTask() {
	task := suite.createTask("Ship", 40, nil, &suite.assignee.ID)

	w, env := suite.do(http.MethodPost, taskURL(task.ID, "/complete"), suite.assignee.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("Task completed", env.Message)
	var result dto.TaskResult
	suite.decode(env, &result)
	suite.Equal(models.TaskStatusDone, result.Task.Status)
	suite.Equal(100, result.Task.Progress)
	suite.Require().NotNil(result.ProjectProgress)
	suite.Equal(100, *result.ProjectProgress)

	w, env = suite.do(http.MethodPost, taskURL(task.ID, "/complete"), suite.assignee.ID, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Task is already complete", env.Message)
}

func (suite *HandlerTestSuite) TestDeleteTask() {
	keep := suite.createTask("Keep", 80, nil, nil)
	drop := suite.createTask("Drop", 20, nil, nil)

	w, _ := suite.do(http.MethodDelete, taskURL(drop.ID, ""), suite.assignee.ID, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, env := suite.do(http.MethodDelete, taskURL(drop.ID, ""), suite.owner.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var result dto.TaskResult
	suite.decode(env, &result)
	suite.Nil(result.Task)
	suite.Require().NotNil(result.ProjectProgress)
	suite.Equal(80, *result.ProjectProgress)

	w, _ = suite.do(http.MethodGet, taskURL(keep.ID, ""), suite.owner.ID, nil)
	suite.Equal(http.StatusOK, w.Code)
	w, _ = suite.do(http.MethodGet, taskURL(drop.ID, ""), suite.owner.ID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateTaskDueDate() {
	task := suite.createTask("Plan", 0, nil, nil)
	due := dayString(4)

	w, env := suite.do(http.MethodPatch, taskURL(task.ID, "/due-date"), suite.owner.ID, map[string]interface{}{
		"due_date": due,
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("Due date set to "+due, env.Message)

	w, env = suite.do(http.MethodPatch, taskURL(task.ID, "/due-date"), suite.owner.ID, map[string]interface{}{
		"due_date": due,
	})
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Due date is unchanged", env.Message)

	w, env = suite.do(http.MethodPatch, taskURL(task.ID, "/due-date"), suite.owner.ID, map[string]interface{}{
		"due_date": nil,
	})
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Due date cleared", env.Message)
}

func (suite *HandlerTestSuite) TestUpdateProgress() {
	task := suite.createTask("Build", 0, nil, &suite.assignee.ID)

	w, env := suite.do(http.MethodPatch, taskURL(task.ID, "/progress"), suite.assignee.ID, map[string]interface{}{
		"progress": 100,
		"user_id":  suite.assignee.ID,
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("Progress updated to 100%", env.Message)
	var result dto.TaskResult
	suite.decode(env, &result)
	suite.Equal(models.TaskStatusDone, result.Task.Status)
	suite.Require().NotNil(result.ProjectProgress)
	suite.Equal(100, *result.ProjectProgress)
}

func (suite *HandlerTestSuite) TestUpdateProgress_Rejections() {
	task := suite.createTask("Build", 10, nil, &suite.assignee.ID)

	w, env := suite.do(http.MethodPatch, taskURL(task.ID, "/progress"), suite.assignee.ID, map[string]interface{}{
		"progress": 50,
		"user_id":  suite.owner.ID,
	})
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal(apierrors.ErrCodeForbidden, env.Code)

	w, env = suite.do(http.MethodPatch, taskURL(task.ID, "/progress"), suite.assignee.ID, map[string]interface{}{
		"progress": 101,
		"user_id":  suite.assignee.ID,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidRange, env.Code)

	w, _ = suite.do(http.MethodPatch, taskURL(task.ID, "/progress"), suite.assignee.ID, map[string]interface{}{
		"user_id": suite.assignee.ID,
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	w, env = suite.do(http.MethodPatch, taskURL(task.ID, "/progress"), suite.assignee.ID, map[string]interface{}{
		"progress": 10,
		"user_id":  suite.assignee.ID,
	})
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Progress is unchanged", env.Message)
}
