package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/yukikurage/project-task-api/internal/repository"
	"gorm.io/gorm"
)

const defaultProgressAttempts = 5

// ProgressChange describes one recomputation of a project's progress.
type ProgressChange struct {
	ProjectID uint64 `json:"project_id"`
	Old       int    `json:"old"`
	New       int    `json:"new"`
	Changed   bool   `json:"changed"`
}

// ProgressAggregator keeps Project.Progress equal to the rounded mean of its
// live tasks' progress.
type ProgressAggregator struct {
	maxAttempts int
}

// NewProgressAggregator creates an aggregator retrying a lost
// compare-and-swap up to maxAttempts times.
func NewProgressAggregator(maxAttempts int) *ProgressAggregator {
	if maxAttempts < 1 {
		maxAttempts = defaultProgressAttempts
	}
	return &ProgressAggregator{maxAttempts: maxAttempts}
}

// Recompute reads the mean task progress and writes it back when it differs
// from the stored value. It must be called with the scope of the mutation
// that triggered it.
func (a *ProgressAggregator) Recompute(scope *repository.Store, projectID uint64) (ProgressChange, error) {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		snapshot, err := scope.Projects.ProgressSnapshot(projectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ProgressChange{}, ErrProjectNotFound
			}
			return ProgressChange{}, fmt.Errorf("failed to read project progress: %w", err)
		}

		avg, err := scope.Tasks.AverageProgress(projectID)
		if err != nil {
			return ProgressChange{}, fmt.Errorf("failed to aggregate task progress: %w", err)
		}

		change := ProgressChange{
			ProjectID: projectID,
			Old:       snapshot.Progress,
			New:       int(math.Round(avg)),
		}
		if change.New == change.Old {
			return change, nil
		}

		swapped, err := scope.Projects.CompareAndSwapProgress(projectID, snapshot.Version, change.New)
		if err != nil {
			return ProgressChange{}, fmt.Errorf("failed to write project progress: %w", err)
		}
		if swapped {
			change.Changed = true
			return change, nil
		}
	}

	return ProgressChange{}, ErrProgressConflict
}
