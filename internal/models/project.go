package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusOpen      ProjectStatus = "OPEN"
	ProjectStatusOngoing   ProjectStatus = "ONGOING"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusArchived  ProjectStatus = "ARCHIVED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

// Project owns its tasks. Progress is derived from them and Version is bumped
// on every write so the progress roll-up can compare-and-swap.
type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Status      ProjectStatus  `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	Progress    int            `gorm:"not null;default:0" json:"progress"`
	StartDate   *time.Time     `json:"start_date"`
	DueDate     *time.Time     `json:"due_date"`
	EndDate     *time.Time     `json:"end_date"`
	IsPublic    bool           `gorm:"not null;default:false" json:"is_public"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	Version     uint64         `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Tasks []Task `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

// IsOwnedBy reports whether userID is the project's owner.
func (p *Project) IsOwnedBy(userID uint64) bool {
	return p != nil && p.OwnerID == userID
}
