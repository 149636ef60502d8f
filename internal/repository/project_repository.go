package repository

import (
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit("Owner", "Tasks").Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// FindForUpdate loads a project and its tasks with locking reads
func (r *GormProjectRepository) FindForUpdate(id uint64) (*models.Project, error) {
	var project models.Project
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id")
		}).
		First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListIDs returns the IDs of all live projects
func (r *GormProjectRepository) ListIDs() ([]uint64, error) {
	var ids []uint64
	if err := r.db.Model(&models.Project{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateDueDate sets the project's due date and bumps its version
func (r *GormProjectRepository) UpdateDueDate(id uint64, dueDate *time.Time) error {
	result := r.db.Model(&models.Project{}).Where("id = ?", id).Updates(map[string]interface{}{
		"due_date": dueDate,
		"version":  gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ProgressSnapshot reads the stored progress and version with a locking read,
// so a retry after a lost swap sees the latest committed row even under
// REPEATABLE READ.
func (r *GormProjectRepository) ProgressSnapshot(id uint64) (*ProgressSnapshot, error) {
	var snapshot ProgressSnapshot
	result := r.db.Model(&models.Project{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("progress, version").
		Where("id = ?", id).
		Find(&snapshot)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &snapshot, nil
}

// CompareAndSwapProgress writes progress only if the version still matches.
// It reports false when another writer bumped the version first.
func (r *GormProjectRepository) CompareAndSwapProgress(id, version uint64, progress int) (bool, error) {
	result := r.db.Model(&models.Project{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"progress": progress,
			"version":  gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
