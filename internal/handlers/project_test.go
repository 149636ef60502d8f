package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/dto"
	"github.com/yukikurage/project-task-api/internal/models"
)

func (suite *HandlerTestSuite) TestCreateProject() {
	w, env := suite.do(http.MethodPost, "/api/projects", suite.owner.ID, map[string]interface{}{
		"name":       "Roadmap",
		"start_date": dayString(0),
		"due_date":   dayString(30),
		"is_public":  true,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var project dto.ProjectDTO
	suite.decode(env, &project)
	suite.Equal("Roadmap", project.Name)
	suite.Equal(models.ProjectStatusOpen, project.Status)
	suite.Equal(suite.owner.ID, project.OwnerID)
	suite.True(project.IsPublic)

	w, env = suite.do(http.MethodPost, "/api/projects", suite.owner.ID, map[string]interface{}{
		"name":       "Backwards",
		"start_date": dayString(10),
		"due_date":   dayString(1),
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apierrors.ErrCodeDateOutOfRange, env.Code)
}

func (suite *HandlerTestSuite) TestGetProject() {
	suite.createTask("One", 0, nil, nil)

	w, env := suite.do(http.MethodGet, projectURL(suite.project.ID, ""), suite.owner.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var project dto.ProjectDTO
	suite.decode(env, &project)
	suite.Len(project.Tasks, 1)

	w, _ = suite.do(http.MethodGet, projectURL(suite.project.ID, ""), suite.stranger.ID, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, env = suite.do(http.MethodGet, projectURL(424242, ""), suite.owner.ID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Project not found", env.Message)
}

func (suite *HandlerTestSuite) TestUpdateProjectDueDate_CascadeDemotes() {
	later := time.Now().UTC().AddDate(0, 0, 10)
	moved := suite.createTask("Moved", 30, &later, &suite.assignee.ID)
	done := suite.createTask("Finished", 100, &later, nil)
	suite.Require().NoError(suite.db.Model(done).Update("status", models.TaskStatusDone).Error)
	suite.createTask("Undated", 0, nil, nil)

	past := dayString(-2)
	w, env := suite.do(http.MethodPatch, projectURL(suite.project.ID, "/due-date"), suite.owner.ID, map[string]interface{}{
		"due_date": past,
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("Project due date set to "+past+"; 1 task(s) updated, 1 moved to backlog", env.Message)

	var result dto.CascadeResult
	suite.decode(env, &result)
	suite.Equal(1, result.AffectedTasks)
	suite.Equal(1, result.DemotedTasks)
	suite.Require().NotNil(result.Project.DueDate)

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, moved.ID).Error)
	suite.Equal(models.TaskStatusBacklog, reloaded.Status)
	suite.Equal(past, reloaded.DueDate.UTC().Format("2006-01-02"))

	w, env = suite.do(http.MethodGet, "/api/notifications", suite.assignee.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page dto.NotificationListResponse
	suite.decode(env, &page)
	suite.Len(page.Notifications, 1)
}

func (suite *HandlerTestSuite) TestUpdateProjectDueDate_OwnerOnly() {
	w, env := suite.do(http.MethodPatch, projectURL(suite.project.ID, "/due-date"), suite.assignee.ID, map[string]interface{}{
		"due_date": dayString(3),
	})
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal(apierrors.ErrCodeForbidden, env.Code)
}

func (suite *HandlerTestSuite) TestListActivities() {
	task := suite.createTask("Tracked", 0, nil, nil)
	w, _ := suite.do(http.MethodPatch, taskURL(task.ID, "/progress"), suite.owner.ID, map[string]interface{}{
		"progress": 50,
		"user_id":  suite.owner.ID,
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w, env := suite.do(http.MethodGet, projectURL(suite.project.ID, "/activities?limit=1"), suite.owner.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var page dto.ActivityListResponse
	suite.decode(env, &page)
	suite.Len(page.Activities, 1)
	suite.Equal(1, page.Pagination.Limit)
	suite.Equal(int64(2), page.Pagination.Total)
}
