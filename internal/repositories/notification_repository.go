package repositories

import (
	"context"

	"coffeeRelay/internal/models"
)

// NotificationRepository stores notification records for the HTTP layer and
// the get-notifications event.
type NotificationRepository interface {
	Insert(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	MarkRead(ctx context.Context, id string) (*models.Notification, error)
	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
}

// SubscriptionRepository stores browser push subscriptions.
type SubscriptionRepository interface {
	Save(ctx context.Context, subscription *models.PushSubscription) error
	FindByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
	ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error)
}
