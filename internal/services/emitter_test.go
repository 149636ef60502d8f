package services

import (
	"context"
	"errors"

	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/repository"
)

func (suite *ServiceTestSuite) TestAuditEmitter_PublishesAfterCommitOnly() {
	emitter := NewAuditEmitter(suite.publisher, suite.log)
	input := NotificationInput{Title: "hi", Message: "there", UserID: suite.assignee.ID, Link: "/tasks/1"}

	err := suite.store.Transaction(context.Background(), func(tx *repository.Store) error {
		suite.Require().NoError(emitter.EmitNotification(context.Background(), tx, input))
		suite.Equal(0, suite.publisher.count())
		return nil
	})
	suite.Require().NoError(err)
	suite.Equal(1, suite.publisher.count())
	suite.NotZero(suite.publisher.published[0].ID)

	rollback := errors.New("rollback")
	err = suite.store.Transaction(context.Background(), func(tx *repository.Store) error {
		suite.Require().NoError(emitter.EmitNotification(context.Background(), tx, input))
		return rollback
	})
	suite.ErrorIs(err, rollback)
	suite.Equal(1, suite.publisher.count())
	suite.Equal(int64(1), suite.countNotifications(suite.assignee.ID))
}

func (suite *ServiceTestSuite) TestAuditEmitter_PublishFailureIsLogged() {
	suite.publisher.err = errors.New("redis down")
	emitter := NewAuditEmitter(suite.publisher, suite.log)

	err := suite.store.Transaction(context.Background(), func(tx *repository.Store) error {
		return emitter.EmitNotification(context.Background(), tx, NotificationInput{Title: "t", Message: "m", UserID: suite.owner.ID})
	})
	suite.Require().NoError(err)
	suite.Equal(1, suite.logs.FilterMessage("notification publish failed").Len())
	suite.Equal(int64(1), suite.countNotifications(suite.owner.ID))
}

func (suite *ServiceTestSuite) TestAuditEmitter_ActivityFailureLeavesScopeUsable() {
	emitter := NewAuditEmitter(nil, suite.log)
	suite.Require().NoError(suite.db.Migrator().DropTable(&models.Activity{}))

	err := suite.store.Transaction(context.Background(), func(tx *repository.Store) error {
		emitErr := emitter.EmitActivity(context.Background(), tx, ActivityInput{
			Type: models.ActivityTaskUpdated, Content: "x", ActorID: suite.owner.ID,
		})
		suite.Error(emitErr)
		return tx.Projects.UpdateDueDate(suite.project.ID, date(2100, 1, 1))
	})
	suite.Require().NoError(err)

	var project models.Project
	suite.Require().NoError(suite.db.First(&project, suite.project.ID).Error)
	suite.True(sameDay(project.DueDate, date(2100, 1, 1)))
}
