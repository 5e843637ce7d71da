package models

import (
	"encoding/json"

	"coffeeRelay/internal/models"
)

// SocketEvent is the envelope read from a client.
type SocketEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	AckID   string          `json:"ackId,omitempty"`
}

// OutboundEvent is the envelope written to a client.
type OutboundEvent struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type AckPayload struct {
	AckID  string `json:"ackId"`
	Status string `json:"status"`
}

type ErrorPayload struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendMessagePayload is a chat message plus the optional conversation room
// it is addressed to.
type SendMessagePayload struct {
	models.ChatMessage
	Room string `json:"room,omitempty"`
}
