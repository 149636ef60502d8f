package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/repository"
	"github.com/yukikurage/project-task-api/internal/utils"
	"gorm.io/gorm"
)

// NotificationService exposes a principal's notifications.
type NotificationService struct {
	store *repository.Store
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store *repository.Store) *NotificationService {
	return &NotificationService{store: store}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actorID uint64, unreadOnly bool, params utils.PaginationParams) ([]models.Notification, int64, error) {
	if err := requirePrincipal(actorID); err != nil {
		return nil, 0, err
	}

	notifications, total, err := s.store.Notifications.List(repository.NotificationFilter{
		UserID:     actorID,
		UnreadOnly: unreadOnly,
		Pagination: params,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, actorID uint64) (*models.Notification, error) {
	if err := requirePrincipal(actorID); err != nil {
		return nil, err
	}

	notification, err := s.store.Notifications.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}

	if notification.UserID != actorID {
		return nil, forbidden("this notification belongs to another user")
	}

	if notification.IsRead {
		return notification, nil
	}

	if err := s.store.Notifications.MarkRead(notification.ID); err != nil {
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	notification.IsRead = true
	return notification, nil
}
