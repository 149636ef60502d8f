package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/dto"
	"github.com/yukikurage/project-task-api/internal/services"
	"github.com/yukikurage/project-task-api/internal/utils"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	log           *zap.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		log:           nopIfNil(log),
	}
}

// ListNotifications returns the caller's notifications; ?unread=true filters to unread ones
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notifications.List(c.Request.Context(), userID, unreadOnly, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "OK", dto.ToNotificationListResponse(notifications, params, total))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := principal(c, h.log)
	if !ok {
		return
	}
	notificationID, ok := pathID(c, "notification")
	if !ok {
		return
	}

	notification, err := h.notifications.MarkRead(c.Request.Context(), notificationID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Notification marked as read", dto.ToNotificationDTO(*notification))
}
