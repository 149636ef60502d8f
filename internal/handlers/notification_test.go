package handlers

import (
	"net/http"
	"strconv"

	"github.com/yukikurage/project-task-api/internal/dto"
)

func (suite *HandlerTestSuite) assignNewTask(title string) {
	w, _ := suite.do(http.MethodPost, "/api/tasks", suite.owner.ID, map[string]interface{}{
		"project_id":  suite.project.ID,
		"title":       title,
		"assignee_id": suite.assignee.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
}

func (suite *HandlerTestSuite) listNotifications(query string) dto.NotificationListResponse {
	w, env := suite.do(http.MethodGet, "/api/notifications"+query, suite.assignee.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page dto.NotificationListResponse
	suite.decode(env, &page)
	return page
}

func (suite *HandlerTestSuite) TestNotifications_ListAndMarkRead() {
	suite.assignNewTask("First")
	suite.assignNewTask("Second")

	page := suite.listNotifications("")
	suite.Require().Len(page.Notifications, 2)
	suite.Equal(int64(2), page.Pagination.Total)

	target := page.Notifications[0]
	url := "/api/notifications/" + strconv.FormatUint(target.ID, 10) + "/read"

	w, _ := suite.do(http.MethodPost, url, suite.stranger.ID, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, env := suite.do(http.MethodPost, url, suite.assignee.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var marked dto.NotificationDTO
	suite.decode(env, &marked)
	suite.True(marked.IsRead)

	unread := suite.listNotifications("?unread=true")
	suite.Len(unread.Notifications, 1)
	suite.NotEqual(target.ID, unread.Notifications[0].ID)
}

func (suite *HandlerTestSuite) TestNotifications_NotFound() {
	w, env := suite.do(http.MethodPost, "/api/notifications/777/read", suite.assignee.ID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Notification not found", env.Message)
}
