package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_IsValid(t *testing.T) {
	for _, s := range AllTaskStatuses() {
		assert.True(t, s.IsValid(), "status %s should be valid", s)
	}
	assert.False(t, TaskStatus("PAUSED").IsValid())
	assert.False(t, TaskStatus("").IsValid())
}

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from TaskStatus
		to   TaskStatus
		want bool
	}{
		{TaskStatusTodo, TaskStatusInProgress, true},
		{TaskStatusInProgress, TaskStatusReview, true},
		{TaskStatusReview, TaskStatusDone, true},
		{TaskStatusDone, TaskStatusTodo, true},
		{TaskStatusBacklog, TaskStatusTodo, true},
		{TaskStatusTodo, TaskStatusCancelled, true},
		{TaskStatusReview, TaskStatusArchived, true},
		{TaskStatusTodo, TaskStatusBacklog, false},
		{TaskStatusCancelled, TaskStatusTodo, false},
		{TaskStatusArchived, TaskStatusDone, false},
		{TaskStatusArchived, TaskStatusArchived, true},
		{TaskStatusTodo, TaskStatus("PAUSED"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTaskStatus_SkippedByCascade(t *testing.T) {
	assert.True(t, TaskStatusDone.SkippedByCascade())
	assert.True(t, TaskStatusArchived.SkippedByCascade())
	assert.True(t, TaskStatusBacklog.SkippedByCascade())
	assert.True(t, TaskStatusCancelled.SkippedByCascade())
	assert.False(t, TaskStatusTodo.SkippedByCascade())
	assert.False(t, TaskStatusInProgress.SkippedByCascade())
	assert.False(t, TaskStatusReview.SkippedByCascade())
}

func TestTaskPriority_IsValid(t *testing.T) {
	assert.True(t, TaskPriorityUrgent.IsValid())
	assert.False(t, TaskPriority("CRITICAL").IsValid())
}
