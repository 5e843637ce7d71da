package repositories

import (
	"context"
	"testing"

	"coffeeRelay/internal/errs"
	"coffeeRelay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoNotificationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Insert(context.Background(), &models.Notification{ID: "n1", UserID: "u1", Title: "Ready"})

		require.NoError(mt, err)
	})

	mt.Run("list by user", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		namespace := mt.DB.Name() + "." + notificationsCollection
		first := mtest.CreateCursorResponse(1, namespace, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "n2"}, {Key: "userId", Value: "u1"}, {Key: "title", Value: "second"}},
			bson.D{{Key: "_id", Value: "n1"}, {Key: "userId", Value: "u1"}, {Key: "title", Value: "first"}},
		)
		last := mtest.CreateCursorResponse(0, namespace, mtest.NextBatch)
		mt.AddMockResponses(first, last)

		notifications, err := repo.ListByUser(context.Background(), "u1")

		require.NoError(mt, err)
		require.Len(mt, notifications, 2)
		assert.Equal(mt, "n2", notifications[0].ID)
		assert.Equal(mt, "first", notifications[1].Title)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		namespace := mt.DB.Name() + "." + notificationsCollection
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, namespace, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "n1"}, {Key: "userId", Value: "u2"}}),
			mtest.CreateCursorResponse(0, namespace, mtest.FirstBatch),
		)

		notification, err := repo.FindByID(context.Background(), "n1")
		require.NoError(mt, err)
		assert.Equal(mt, "u2", notification.UserID)

		_, err = repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, errs.ErrNotificationNotFound)
	})

	mt.Run("mark read", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "n1"}, {Key: "userId", Value: "u1"}, {Key: "read", Value: true},
		}}))

		notification, err := repo.MarkRead(context.Background(), "n1")

		require.NoError(mt, err)
		assert.True(mt, notification.Read)
	})

	mt.Run("mark read missing", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.MarkRead(context.Background(), "missing")

		assert.ErrorIs(mt, err, errs.ErrNotificationNotFound)
	})
}

func TestMongoSubscriptionRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save", func(mt *mtest.T) {
		repo := NewMongoSubscriptionRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}))

		err := repo.Save(context.Background(), &models.PushSubscription{Endpoint: "https://push.example.com/1", UserID: "u1"})

		require.NoError(mt, err)
	})

	mt.Run("find by endpoint", func(mt *mtest.T) {
		repo := NewMongoSubscriptionRepository(mt.DB)
		namespace := mt.DB.Name() + "." + pushSubscriptionsCollection
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, namespace, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "https://push.example.com/1"}, {Key: "userId", Value: "u2"}}),
			mtest.CreateCursorResponse(0, namespace, mtest.FirstBatch),
		)

		subscription, err := repo.FindByEndpoint(context.Background(), "https://push.example.com/1")
		require.NoError(mt, err)
		assert.Equal(mt, "u2", subscription.UserID)

		_, err = repo.FindByEndpoint(context.Background(), "https://push.example.com/2")
		assert.ErrorIs(mt, err, errs.ErrSubscriptionNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewMongoSubscriptionRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		require.NoError(mt, repo.Delete(context.Background(), "https://push.example.com/1"))
		assert.ErrorIs(mt, repo.Delete(context.Background(), "https://push.example.com/1"), errs.ErrSubscriptionNotFound)
	})
}
