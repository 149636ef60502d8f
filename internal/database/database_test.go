package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-task-api/internal/config"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db, zap.NewNop()))

	migrator := db.Migrator()
	for _, table := range []string{"users", "projects", "tasks", "activities", "notifications"} {
		assert.True(t, migrator.HasTable(table), "missing table %s", table)
	}
	for _, idx := range indexes {
		assert.True(t, migrator.HasIndex(idx.model, idx.name), "missing index %s", idx.name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db, zap.NewNop()))
	assert.NoError(t, Migrate(db, zap.NewNop()))
}

func TestDialector(t *testing.T) {
	cfg := &config.Config{DBDriver: "postgres", DBHost: "db", DBPort: "5432"}
	d, err := Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	cfg.DBDriver = "mysql"
	d, err = Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	cfg.DBDriver = "oracle"
	_, err = Dialector(cfg)
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, db.Create(&models.User{Username: name, PasswordHash: "x"}).Error)
	}

	var users []models.User
	err := db.Order("id").Scopes(Paginate(utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})).Find(&users).Error
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "c", users[0].Username)
}

func TestFeedPage_NewestFirstWithIDTiebreak(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	same := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for _, u := range []models.User{
		{Username: "old", PasswordHash: "x", CreatedAt: same.Add(-time.Hour)},
		{Username: "first", PasswordHash: "x", CreatedAt: same},
		{Username: "second", PasswordHash: "x", CreatedAt: same},
	} {
		require.NoError(t, db.Create(&u).Error)
	}

	var page []models.User
	require.NoError(t, db.Scopes(FeedPage(utils.NewPaginationParams(1, 2))).Find(&page).Error)
	require.Len(t, page, 2)
	assert.Equal(t, "second", page[0].Username)
	assert.Equal(t, "first", page[1].Username)

	require.NoError(t, db.Scopes(FeedPage(utils.NewPaginationParams(2, 2))).Find(&page).Error)
	require.Len(t, page, 1)
	assert.Equal(t, "old", page[0].Username)
}
