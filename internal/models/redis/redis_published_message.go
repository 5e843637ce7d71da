package models

import "encoding/json"

const REDIS_CHANNEL_ROOMS = "relay:rooms"

// RedisPublishedMessage carries one room emission between relay processes.
type RedisPublishedMessage struct {
	Event   string          `json:"event"`
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
}
