package repository

import (
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit("Project", "Creator", "Assignee").Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// UpdateFields writes the given columns of a single task
func (r *GormTaskRepository) UpdateFields(id uint64, fields map[string]interface{}) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(fields).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	result := r.db.Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CascadeDueDate moves the due date of the given tasks, optionally forcing a status
func (r *GormTaskRepository) CascadeDueDate(ids []uint64, dueDate time.Time, status *models.TaskStatus) error {
	if len(ids) == 0 {
		return nil
	}

	fields := map[string]interface{}{"due_date": dueDate}
	if status != nil {
		fields["status"] = *status
	}

	return r.db.Model(&models.Task{}).Where("id IN ?", ids).Updates(fields).Error
}

// AverageProgress returns the mean progress of a project's live tasks, 0 when it has none
func (r *GormTaskRepository) AverageProgress(projectID uint64) (float64, error) {
	var avg float64
	err := r.db.Raw(
		"SELECT COALESCE(AVG(progress), 0) FROM tasks WHERE project_id = ? AND deleted_at IS NULL",
		projectID,
	).Row().Scan(&avg)
	return avg, err
}
