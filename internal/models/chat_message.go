package models

// ChatMessage travels between customers and staff. It is never stored.
type ChatMessage struct {
	ID     string `json:"id" validate:"required"`
	Text   string `json:"text" validate:"required"`
	Sender string `json:"sender" validate:"required,oneof=user admin"`
}
