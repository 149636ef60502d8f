package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-task-api/internal/models"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-05-01T10:30:00+09:00")
	require.NoError(t, err)
	assert.Equal(t, 1, d.UTC().Hour())

	_, err = ParseDate("01/05/2024")
	assert.Error(t, err)

	none, err := ParseOptionalDate(nil)
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestResult_OmitsEmptyData(t *testing.T) {
	raw, err := json.Marshal(OK("Task is already complete", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Task is already complete"}`, string(raw))
}

func TestToTaskDTO_Relations(t *testing.T) {
	assigneeID := uint64(9)
	task := models.Task{
		ID:         1,
		Title:      "Ship it",
		Status:     models.TaskStatusReview,
		Priority:   models.TaskPriorityHigh,
		Progress:   80,
		ProjectID:  3,
		CreatorID:  2,
		AssigneeID: &assigneeID,
		Creator:    models.User{ID: 2, Username: "alice"},
	}

	got := ToTaskDTO(task)
	require.NotNil(t, got.Creator)
	assert.Equal(t, "alice", got.Creator.Username)
	assert.Nil(t, got.Assignee)
	assert.Equal(t, &assigneeID, got.AssigneeID)

	task.Assignee = &models.User{ID: 9, Username: "bob"}
	got = ToTaskDTO(task)
	require.NotNil(t, got.Assignee)
	assert.Equal(t, "bob", got.Assignee.Username)
}

func TestToProjectDTO_HidesVersion(t *testing.T) {
	project := models.Project{ID: 4, Name: "Apollo", Progress: 50, Version: 12, Tasks: []models.Task{{ID: 1}, {ID: 2}}}

	raw, err := json.Marshal(ToProjectDTO(project))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "version")
	assert.Len(t, decoded["tasks"], 2)
}
