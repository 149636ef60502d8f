package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle. A Store
// handed to a Transaction callback is bound to that transaction.
type Store struct {
	db *gorm.DB

	Tasks         TaskRepository
	Projects      ProjectRepository
	Activities    ActivityRepository
	Notifications NotificationRepository
	Users         UserRepository

	// non-nil only for transaction-bound stores
	hooks *[]func()
}

// NewStore builds a Store over db.
func NewStore(db *gorm.DB) *Store {
	return newStore(db, nil)
}

func newStore(db *gorm.DB, hooks *[]func()) *Store {
	return &Store{
		db:            db,
		Tasks:         NewTaskRepository(db),
		Projects:      NewProjectRepository(db),
		Activities:    NewActivityRepository(db),
		Notifications: NewNotificationRepository(db),
		Users:         NewUserRepository(db),
		hooks:         hooks,
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a database transaction. Every write fn makes
// through tx commits or rolls back together. Hooks registered with
// AfterCommit run once the commit succeeded and are dropped on rollback.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.hooks != nil {
		// already inside a transaction; join it
		return fn(s)
	}

	var hooks []func()
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(newStore(gtx, &hooks))
	})
	if err != nil {
		return err
	}

	for _, hook := range hooks {
		hook()
	}
	return nil
}

// Savepoint runs fn in a nested transaction. A failure inside fn rolls back
// only fn's writes and leaves the enclosing transaction usable.
func (s *Store) Savepoint(fn func(sp *Store) error) error {
	return s.db.Transaction(func(gtx *gorm.DB) error {
		return fn(newStore(gtx, s.hooks))
	})
}

// AfterCommit defers fn until the enclosing transaction commits. Outside a
// transaction fn runs immediately.
func (s *Store) AfterCommit(fn func()) {
	if s.hooks == nil {
		fn()
		return
	}
	*s.hooks = append(*s.hooks, fn)
}
