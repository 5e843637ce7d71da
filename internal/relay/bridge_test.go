package relay

import (
	"context"
	"encoding/json"
	"testing"

	"coffeeRelay/internal/enums"
	"coffeeRelay/internal/models"

	"github.com/stretchr/testify/require"
)

func scenarioNotification() models.Notification {
	return models.Notification{
		ID:          "n1",
		UserID:      "u1",
		Title:       "Hi",
		Description: "test",
		RedirectURL: "/",
		Read:        false,
	}
}

// Scenario A
func TestBridge_PushNotificationCreated_Delivers_To_User_Room(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()
	c1 := newFakeConn("c1")
	req.NoError(r.Registry.Register(c1))
	req.NoError(r.Registry.Join("c1", "u1"))
	payload := map[string]any{
		"_id":         "n1",
		"userId":      "u1",
		"title":       "Hi",
		"description": "test",
		"redirectUrl": "/",
		"read":        false,
	}

	req.NoError(r.Bridge.PushNotificationCreated(context.Background(), "u1", payload))

	events := c1.received(t)
	req.Len(events, 1)
	req.Equal(enums.SOCKET_EVENT_NOTIFICATION, events[0].Event)
	req.JSONEq(`{"_id":"n1","userId":"u1","title":"Hi","description":"test","redirectUrl":"/","read":false}`,
		string(events[0].Payload))
}

func TestBridge_Payload_Round_Trips_Byte_Identical(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()
	c1 := newFakeConn("c1")
	req.NoError(r.Registry.Register(c1))
	req.NoError(r.Registry.Join("c1", "u1"))
	record := scenarioNotification()

	req.NoError(r.Bridge.PushNotificationCreated(context.Background(), "u1", record))

	expected, err := json.Marshal(record)
	req.NoError(err)
	events := c1.received(t)
	req.Len(events, 1)
	req.Equal(string(expected), string(events[0].Payload))
}

// Scenario B
func TestBridge_PushNotificationCreated_After_Disconnect(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()
	c1 := newFakeConn("c1")
	req.NoError(r.Registry.Register(c1))
	req.NoError(r.Registry.Join("c1", "u1"))
	r.Registry.Unregister("c1")

	err := r.Bridge.PushNotificationCreated(context.Background(), "u1", scenarioNotification())

	req.NoError(err)
	req.Empty(c1.received(t))
	req.False(r.Bridge.HasLocalListeners("u1"))
}

func TestBridge_HasLocalListeners(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()
	req.NoError(r.Registry.Register(newFakeConn("c1")))

	req.False(r.Bridge.HasLocalListeners("u1"))
	req.NoError(r.Registry.Join("c1", "u1"))
	req.True(r.Bridge.HasLocalListeners("u1"))
}
