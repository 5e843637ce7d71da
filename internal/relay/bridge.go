package relay

import (
	"context"

	"coffeeRelay/internal/enums"
)

// Bridge is the narrow surface the HTTP layer uses to push into rooms
// without holding a connection.
type Bridge struct {
	router   *Router
	registry *Registry
}

func NewBridge(router *Router, registry *Registry) *Bridge {
	return &Bridge{
		router:   router,
		registry: registry,
	}
}

// PushNotificationCreated emits the record to the room named after userID.
// An empty room is not an error: the record is already stored and the user
// picks it up with the next get-notifications.
func (b *Bridge) PushNotificationCreated(ctx context.Context, userID string, record any) error {
	return b.router.EmitToRoom(ctx, userID, enums.SOCKET_EVENT_NOTIFICATION, record)
}

// HasLocalListeners reports whether a connection on this process is in the
// user's room.
func (b *Bridge) HasLocalListeners(userID string) bool {
	return b.registry.HasMembers(userID)
}
