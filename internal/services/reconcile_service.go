package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/project-task-api/internal/repository"
	"go.uber.org/zap"
)

// ReconcileReport summarises one reconciliation pass.
type ReconcileReport struct {
	Checked  int
	Adjusted []ProgressChange
	Failed   int
}

// ReconcileService repairs project progress that drifted from its tasks,
// e.g. after manual database edits.
type ReconcileService struct {
	store      *repository.Store
	aggregator *ProgressAggregator
	log        *zap.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(store *repository.Store, aggregator *ProgressAggregator, log *zap.Logger) *ReconcileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReconcileService{store: store, aggregator: aggregator, log: log}
}

// ReconcileAll recomputes every project's progress, each in its own
// transaction. A failing project is logged and skipped.
func (s *ReconcileService) ReconcileAll(ctx context.Context) (*ReconcileReport, error) {
	ids, err := s.store.Projects.ListIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	report := &ReconcileReport{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Checked++

		var change ProgressChange
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			var err error
			change, err = s.aggregator.Recompute(tx, id)
			return err
		})
		if err != nil {
			report.Failed++
			s.log.Warn("progress reconciliation failed", zap.Uint64("project_id", id), zap.Error(err))
			continue
		}

		if change.Changed {
			report.Adjusted = append(report.Adjusted, change)
			s.log.Info("project progress drift repaired",
				zap.Uint64("project_id", id),
				zap.Int("old", change.Old),
				zap.Int("new", change.New),
			)
		}
	}

	return report, nil
}
