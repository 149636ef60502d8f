package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/notify"
	"github.com/yukikurage/project-task-api/internal/repository"
	"github.com/yukikurage/project-task-api/pkg/logger"
	"go.uber.org/zap"
)

// ActivityInput describes one audit entry.
type ActivityInput struct {
	Type      models.ActivityType
	Link      string
	Content   string
	TaskID    *uint64
	ProjectID *uint64
	ActorID   uint64
}

// NotificationInput describes one message to a principal.
type NotificationInput struct {
	Title   string
	Message string
	UserID  uint64
	Link    string
}

// Emitter records audit entries and notifications for a mutation. scope is
// the mutation's atomic scope; an implementation must leave it usable when
// it fails.
type Emitter interface {
	EmitActivity(ctx context.Context, scope *repository.Store, input ActivityInput) error
	EmitNotification(ctx context.Context, scope *repository.Store, input NotificationInput) error
}

// AuditEmitter stores activities and notifications in the database and, when
// a publisher is configured, pushes each notification live after commit.
type AuditEmitter struct {
	publisher notify.Publisher
	log       *zap.Logger
}

// NewAuditEmitter creates an AuditEmitter. publisher may be nil.
func NewAuditEmitter(publisher notify.Publisher, log *zap.Logger) *AuditEmitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditEmitter{publisher: publisher, log: log}
}

// EmitActivity appends an activity inside a savepoint of scope.
func (e *AuditEmitter) EmitActivity(ctx context.Context, scope *repository.Store, input ActivityInput) error {
	activity := &models.Activity{
		Type:      input.Type,
		Content:   input.Content,
		Link:      input.Link,
		TaskID:    input.TaskID,
		ProjectID: input.ProjectID,
		UserID:    input.ActorID,
	}

	return scope.Savepoint(func(sp *repository.Store) error {
		if err := sp.Activities.Create(activity); err != nil {
			return fmt.Errorf("failed to record activity: %w", err)
		}
		return nil
	})
}

// EmitNotification stores a notification inside a savepoint of scope and
// schedules its live delivery for after the scope commits.
func (e *AuditEmitter) EmitNotification(ctx context.Context, scope *repository.Store, input NotificationInput) error {
	notification := &models.Notification{
		Title:   input.Title,
		Message: input.Message,
		UserID:  input.UserID,
		Link:    input.Link,
	}

	err := scope.Savepoint(func(sp *repository.Store) error {
		if err := sp.Notifications.Create(notification); err != nil {
			return fmt.Errorf("failed to store notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if e.publisher != nil {
		publishCtx := context.WithoutCancel(ctx)
		scope.AfterCommit(func() {
			if err := e.publisher.Publish(publishCtx, notification); err != nil {
				logger.WithRequestID(publishCtx, e.log).Warn("notification publish failed",
					zap.Uint64("notification_id", notification.ID),
					zap.Uint64("user_id", notification.UserID),
					zap.Error(err),
				)
			}
		})
	}

	return nil
}

// sideEffects runs emitter calls so that their failures are only logged.
type sideEffects struct {
	emitter Emitter
	log     *zap.Logger
}

func newSideEffects(emitter Emitter, log *zap.Logger) sideEffects {
	if log == nil {
		log = zap.NewNop()
	}
	return sideEffects{emitter: emitter, log: log}
}

func (s sideEffects) activity(ctx context.Context, scope *repository.Store, input ActivityInput) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitActivity(ctx, scope, input); err != nil {
		logger.WithRequestID(ctx, s.log).Warn("activity emit failed",
			zap.String("type", string(input.Type)),
			zap.Uint64p("task_id", input.TaskID),
			zap.Uint64p("project_id", input.ProjectID),
			zap.Uint64("actor_id", input.ActorID),
			zap.Error(err),
		)
	}
}

func (s sideEffects) notification(ctx context.Context, scope *repository.Store, input NotificationInput) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitNotification(ctx, scope, input); err != nil {
		logger.WithRequestID(ctx, s.log).Warn("notification emit failed",
			zap.String("title", input.Title),
			zap.Uint64("user_id", input.UserID),
			zap.Error(err),
		)
	}
}

func taskLink(id uint64) string {
	return fmt.Sprintf("/tasks/%d", id)
}

func projectLink(id uint64) string {
	return fmt.Sprintf("/projects/%d", id)
}
