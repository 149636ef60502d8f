package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/dto"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/middleware"
	"github.com/yukikurage/project-task-api/internal/services"
	"github.com/yukikurage/project-task-api/pkg/logger"
	"go.uber.org/zap"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, dto.OK(message, data))
}

// respondError maps a service failure onto an HTTP status and failure body.
// Failures without a known kind are logged and reported generically.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.NewAPIError(apierrors.ErrCodeInvalidCredentials, "Invalid username or password"))
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrNotificationNotFound):
		apierrors.NotFound(c, "Notification not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrInvalidField):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidField, err.Error())
	case errors.Is(err, services.ErrInvalidRange):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidRange, err.Error())
	case errors.Is(err, services.ErrDateOutOfRange):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeDateOutOfRange, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.Conflict(c, apierrors.ErrCodeInvalidOperation, err.Error())
	case errors.Is(err, services.ErrProgressConflict):
		apierrors.Conflict(c, apierrors.ErrCodeConflict, "The project was modified concurrently, please retry")
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, apierrors.ErrCodeAlreadyExists, "Username already exists")
	default:
		logger.WithRequestID(c.Request.Context(), log).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		apierrors.InternalError(c, "")
	}
}

// principal resolves the caller or writes the 401 response.
func principal(c *gin.Context, log *zap.Logger) (uint64, bool) {
	userID, err := middleware.ResolvePrincipal(c)
	if err != nil {
		respondError(c, log, err)
		return 0, false
	}
	return userID, true
}

// pathID returns the :id parsed by middleware.RequireIDParam, parsing the
// path itself when the middleware is not mounted.
func pathID(c *gin.Context, resource string) (uint64, bool) {
	if id, ok := middleware.GetIDParam(c); ok {
		return id, true
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+resource+" ID")
		return 0, false
	}
	return id, true
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
