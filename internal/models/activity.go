package models

import "time"

type ActivityType string

const (
	ActivityTaskCreated            ActivityType = "TASK_CREATED"
	ActivityTaskUpdated            ActivityType = "TASK_UPDATED"
	ActivityTaskCompleted          ActivityType = "TASK_COMPLETED"
	ActivityTaskDeleted            ActivityType = "TASK_DELETED"
	ActivityTaskDueDateChanged     ActivityType = "TASK_DUE_DATE_CHANGED"
	ActivityTaskProgressChanged    ActivityType = "TASK_PROGRESS_CHANGED"
	ActivityProjectDueDateChanged  ActivityType = "PROJECT_DUE_DATE_CHANGED"
	ActivityProjectProgressChanged ActivityType = "PROJECT_PROGRESS_CHANGED"
)

// Activity is an append-only audit entry. TaskID and ProjectID are plain
// back-references without foreign keys so entries outlive deleted tasks.
type Activity struct {
	ID        uint64       `gorm:"primarykey" json:"id"`
	Type      ActivityType `gorm:"type:varchar(40);not null" json:"type"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	Link      string       `gorm:"type:varchar(255)" json:"link"`
	TaskID    *uint64      `json:"task_id"`
	ProjectID *uint64      `json:"project_id"`
	UserID    uint64       `gorm:"not null" json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
}
