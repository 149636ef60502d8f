package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes.
type Handlers struct {
	Auth          *AuthHandler
	Projects      *ProjectHandler
	Tasks         *TaskHandler
	Notifications *NotificationHandler
}

// RegisterRoutes mounts the API on r. Session middleware must already be installed.
func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Task API is running",
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
		}

		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.POST("", h.Projects.CreateProject)
			projects.GET("/:id", middleware.RequireIDParam("project"), h.Projects.GetProject)
			projects.PATCH("/:id/due-date", middleware.RequireIDParam("project"), h.Projects.UpdateDueDate)
			projects.GET("/:id/activities", middleware.RequireIDParam("project"), h.Projects.ListActivities)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.POST("", h.Tasks.CreateTask)
			tasks.GET("/:id", middleware.RequireIDParam("task"), h.Tasks.GetTask)
			tasks.PATCH("/:id", middleware.RequireIDParam("task"), h.Tasks.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireIDParam("task"), h.Tasks.DeleteTask)
			tasks.POST("/:id/complete", middleware.RequireIDParam("task"), h.Tasks.CompleteTask)
			tasks.PATCH("/:id/due-date", middleware.RequireIDParam("task"), h.Tasks.UpdateDueDate)
			tasks.PATCH("/:id/progress", middleware.RequireIDParam("task"), h.Tasks.UpdateProgress)
		}

		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth())
		{
			notifications.GET("", h.Notifications.ListNotifications)
			notifications.POST("/:id/read", middleware.RequireIDParam("notification"), h.Notifications.MarkRead)
		}
	}
}
