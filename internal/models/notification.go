package models

import "time"

// Notification is the record shown in a user's notification bell. The relay
// forwards it untouched; only the repositories look inside.
type Notification struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"_id" bson:"_id"`
	UserID      string    `gorm:"index;not null" json:"userId" bson:"userId"`
	Title       string    `gorm:"not null" json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	RedirectURL string    `json:"redirectUrl" bson:"redirectUrl"`
	Read        bool      `gorm:"default:false" json:"read" bson:"read"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
}

type CreateNotificationRequest struct {
	UserID      string `json:"userId" binding:"required" validate:"required"`
	Title       string `json:"title" binding:"required" validate:"required"`
	Description string `json:"description"`
	RedirectURL string `json:"redirectUrl"`
}
