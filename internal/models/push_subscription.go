package models

import "time"

// PushSubscription holds a browser push endpoint registered by a user.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint" bson:"_id"`
	UserID    string    `gorm:"index;not null" json:"userId" bson:"userId"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh" bson:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth" bson:"auth"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt" bson:"createdAt"`
}

type PushSubscriptionKeys struct {
	P256DH string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

type SubscribeRequest struct {
	UserID   string               `json:"userId" binding:"required"`
	Endpoint string               `json:"endpoint" binding:"required,url"`
	Keys     PushSubscriptionKeys `json:"keys" binding:"required"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}
