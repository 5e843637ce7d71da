package models

import "time"

// Presence is what the presence route reports for one user. LastSeen is when
// one of their sockets last closed, nil when unknown.
type Presence struct {
	UserID   string     `json:"userId"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}
