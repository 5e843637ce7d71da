package client

import "time"

// Message is a chat message. Sender is "user" or "admin".
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender string `json:"sender"`
}

// NotificationRequest is the payload of send-notification.
type NotificationRequest struct {
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Notification is the record carried by notification and notifications
// events.
type Notification struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RedirectURL string    `json:"redirectUrl"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

type sendMessagePayload struct {
	Message
	Room string `json:"room,omitempty"`
}
