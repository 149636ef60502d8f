package database

import (
	"fmt"

	"github.com/yukikurage/project-task-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type index struct {
	model   interface{}
	table   string
	name    string
	columns string
}

// indexes backs the hot read paths: progress AVG, activity feeds and unread counts.
var indexes = []index{
	{&models.Task{}, "tasks", "idx_tasks_project_deleted", "project_id, deleted_at"},
	{&models.Task{}, "tasks", "idx_tasks_assignee_id", "assignee_id"},
	{&models.Task{}, "tasks", "idx_tasks_due_date", "due_date"},
	{&models.Activity{}, "activities", "idx_activities_project_created", "project_id, created_at"},
	{&models.Activity{}, "activities", "idx_activities_task_id", "task_id"},
	{&models.Notification{}, "notifications", "idx_notifications_user_read", "user_id, is_read"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	migrator := db.Migrator()

	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns),
		)
	}

	return nil
}
