package repositories

import (
	"context"
	"errors"

	"coffeeRelay/internal/errs"
	"coffeeRelay/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	notificationsCollection     = "notifications"
	pushSubscriptionsCollection = "push_subscriptions"
)

type MongoNotificationRepository struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{
		coll: db.Collection(notificationsCollection),
	}
}

func (nr *MongoNotificationRepository) Insert(ctx context.Context, notification *models.Notification) error {
	_, err := nr.coll.InsertOne(ctx, notification)
	return err
}

func (nr *MongoNotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	err := nr.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&notification)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (nr *MongoNotificationRepository) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	err := nr.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&notification)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (nr *MongoNotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := nr.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	notifications := []models.Notification{}
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

type MongoSubscriptionRepository struct {
	coll *mongo.Collection
}

func NewMongoSubscriptionRepository(db *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{
		coll: db.Collection(pushSubscriptionsCollection),
	}
}

func (sr *MongoSubscriptionRepository) Save(ctx context.Context, subscription *models.PushSubscription) error {
	_, err := sr.coll.ReplaceOne(ctx,
		bson.M{"_id": subscription.Endpoint},
		subscription,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (sr *MongoSubscriptionRepository) FindByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	var subscription models.PushSubscription
	err := sr.coll.FindOne(ctx, bson.M{"_id": endpoint}).Decode(&subscription)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (sr *MongoSubscriptionRepository) Delete(ctx context.Context, endpoint string) error {
	result, err := sr.coll.DeleteOne(ctx, bson.M{"_id": endpoint})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return errs.ErrSubscriptionNotFound
	}
	return nil
}

func (sr *MongoSubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	cur, err := sr.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	subscriptions := []models.PushSubscription{}
	if err := cur.All(ctx, &subscriptions); err != nil {
		return nil, err
	}
	return subscriptions, nil
}
