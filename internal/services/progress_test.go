package services

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-task-api/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*repository.Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return repository.NewStore(db), mock
}

var (
	// every attempt re-reads the project row with a locking read
	snapshotQuery = regexp.QuoteMeta(`SELECT progress, version FROM "projects" WHERE id = $1 AND "projects"."deleted_at" IS NULL`) + `.*FOR UPDATE`
	averageQuery  = regexp.QuoteMeta("SELECT COALESCE(AVG(progress), 0) FROM tasks WHERE project_id = $1 AND deleted_at IS NULL")
	casUpdate     = regexp.QuoteMeta(`UPDATE "projects" SET`)
)

func expectRead(mock sqlmock.Sqlmock, progress int, version uint64, avg float64) {
	mock.ExpectQuery(snapshotQuery).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"progress", "version"}).AddRow(progress, version))
	mock.ExpectQuery(averageQuery).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(avg))
}

func TestProgressAggregator_RetriesLostSwap(t *testing.T) {
	store, mock := newMockStore(t)

	expectRead(mock, 10, 3, 49.5)
	mock.ExpectExec(casUpdate).WillReturnResult(sqlmock.NewResult(0, 0))
	expectRead(mock, 20, 4, 49.5)
	mock.ExpectExec(casUpdate).WillReturnResult(sqlmock.NewResult(0, 1))

	change, err := NewProgressAggregator(3).Recompute(store, 7)
	require.NoError(t, err)
	assert.Equal(t, ProgressChange{ProjectID: 7, Old: 20, New: 50, Changed: true}, change)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressAggregator_GivesUpAfterMaxAttempts(t *testing.T) {
	store, mock := newMockStore(t)

	for i := 0; i < 2; i++ {
		expectRead(mock, 0, uint64(i), 80)
		mock.ExpectExec(casUpdate).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	_, err := NewProgressAggregator(2).Recompute(store, 7)
	assert.ErrorIs(t, err, ErrProgressConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressAggregator_SkipsWriteWhenUnchanged(t *testing.T) {
	store, mock := newMockStore(t)

	expectRead(mock, 33, 9, 33.3)

	change, err := NewProgressAggregator(3).Recompute(store, 7)
	require.NoError(t, err)
	assert.False(t, change.Changed)
	assert.Equal(t, 33, change.New)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressAggregator_ProjectMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(snapshotQuery).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"progress", "version"}))

	_, err := NewProgressAggregator(3).Recompute(store, 7)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewProgressAggregator_DefaultsAttempts(t *testing.T) {
	assert.Equal(t, defaultProgressAttempts, NewProgressAggregator(0).maxAttempts)
}
