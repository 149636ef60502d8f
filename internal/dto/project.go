package dto

import (
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/utils"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Progress    int                  `json:"progress"`
	StartDate   *time.Time           `json:"start_date"`
	DueDate     *time.Time           `json:"due_date"`
	EndDate     *time.Time           `json:"end_date"`
	IsPublic    bool                 `json:"is_public"`
	OwnerID     uint64               `json:"owner_id"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Tasks       []TaskDTO            `json:"tasks,omitempty"`
}

// CascadeResult is the data of a project due-date change.
type CascadeResult struct {
	Project       ProjectDTO `json:"project"`
	AffectedTasks int        `json:"affected_tasks"`
	DemotedTasks  int        `json:"demoted_tasks"`
}

// ActivityDTO represents an activity entry in API responses
type ActivityDTO struct {
	ID        uint64              `json:"id"`
	Type      models.ActivityType `json:"type"`
	Content   string              `json:"content"`
	Link      string              `json:"link"`
	TaskID    *uint64             `json:"task_id,omitempty"`
	ProjectID *uint64             `json:"project_id,omitempty"`
	UserID    uint64              `json:"user_id"`
	CreatedAt time.Time           `json:"created_at"`
}

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityListResponse represents a page of activities
type ActivityListResponse struct {
	Activities []ActivityDTO            `json:"activities"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// NotificationListResponse represents a page of notifications
type NotificationListResponse struct {
	Notifications []NotificationDTO        `json:"notifications"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		Progress:    project.Progress,
		StartDate:   project.StartDate,
		DueDate:     project.DueDate,
		EndDate:     project.EndDate,
		IsPublic:    project.IsPublic,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}

	if len(project.Tasks) > 0 {
		dto.Tasks = ToTaskDTOs(project.Tasks)
	}

	return dto
}

// ToActivityDTO converts an Activity model to ActivityDTO
func ToActivityDTO(activity models.Activity) ActivityDTO {
	return ActivityDTO{
		ID:        activity.ID,
		Type:      activity.Type,
		Content:   activity.Content,
		Link:      activity.Link,
		TaskID:    activity.TaskID,
		ProjectID: activity.ProjectID,
		UserID:    activity.UserID,
		CreatedAt: activity.CreatedAt,
	}
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(notification models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        notification.ID,
		Title:     notification.Title,
		Message:   notification.Message,
		Link:      notification.Link,
		IsRead:    notification.IsRead,
		CreatedAt: notification.CreatedAt,
	}
}

// ToActivityListResponse converts a page of activities
func ToActivityListResponse(activities []models.Activity, params utils.PaginationParams, total int64) ActivityListResponse {
	items := make([]ActivityDTO, len(activities))
	for i, activity := range activities {
		items[i] = ToActivityDTO(activity)
	}
	return ActivityListResponse{
		Activities: items,
		Pagination: params.Response(total),
	}
}

// ToNotificationListResponse converts a page of notifications
func ToNotificationListResponse(notifications []models.Notification, params utils.PaginationParams, total int64) NotificationListResponse {
	items := make([]NotificationDTO, len(notifications))
	for i, notification := range notifications {
		items[i] = ToNotificationDTO(notification)
	}
	return NotificationListResponse{
		Notifications: items,
		Pagination:    params.Response(total),
	}
}
