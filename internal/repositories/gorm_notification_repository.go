package repositories

import (
	"context"
	"errors"

	"coffeeRelay/internal/errs"
	"coffeeRelay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{
		db: db,
	}
}

func (nr *GormNotificationRepository) Insert(ctx context.Context, notification *models.Notification) error {
	return nr.db.WithContext(ctx).Create(notification).Error
}

func (nr *GormNotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	err := nr.db.WithContext(ctx).Where("id = ?", id).First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (nr *GormNotificationRepository) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	err := nr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.ErrNotificationNotFound
		}
		return tx.Where("id = ?", id).First(&notification).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (nr *GormNotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := nr.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

type GormSubscriptionRepository struct {
	db *gorm.DB
}

func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{
		db: db,
	}
}

// Save inserts the subscription or refreshes the keys of an existing endpoint.
func (sr *GormSubscriptionRepository) Save(ctx context.Context, subscription *models.PushSubscription) error {
	return sr.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(subscription).Error
}

func (sr *GormSubscriptionRepository) FindByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	var subscription models.PushSubscription
	err := sr.db.WithContext(ctx).Where("endpoint = ?", endpoint).First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (sr *GormSubscriptionRepository) Delete(ctx context.Context, endpoint string) error {
	result := sr.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrSubscriptionNotFound
	}
	return nil
}

func (sr *GormSubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	subscriptions := []models.PushSubscription{}
	if err := sr.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subscriptions).Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}
