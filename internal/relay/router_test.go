package relay

import (
	"context"
	"encoding/json"
	"testing"

	"coffeeRelay/internal/enums"
	"coffeeRelay/internal/errs"
	"coffeeRelay/internal/models"

	"github.com/stretchr/testify/require"
)

// Scenario C
func TestRouter_EmitToRoom_Reaches_Only_Members(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()
	c1, c2, c3 := newFakeConn("c1"), newFakeConn("c2"), newFakeConn("c3")
	for _, conn := range []*fakeConn{c1, c2, c3} {
		req.NoError(r.Registry.Register(conn))
	}
	req.NoError(r.Registry.Join("c1", enums.ADMIN_ROOM))
	req.NoError(r.Registry.Join("c2", enums.ADMIN_ROOM))
	msg := models.ChatMessage{ID: "m1", Text: "one flat white please", Sender: enums.CHAT_SENDER_USER}

	// When the message is emitted once to the admin room
	req.NoError(r.Router.EmitToRoom(context.Background(), enums.ADMIN_ROOM, enums.SOCKET_EVENT_RECEIVE_MESSAGE, msg))

	// Then both members get exactly one copy
	expected, err := json.Marshal(msg)
	req.NoError(err)
	for _, member := range []*fakeConn{c1, c2} {
		events := member.received(t)
		req.Len(events, 1)
		req.Equal(enums.SOCKET_EVENT_RECEIVE_MESSAGE, events[0].Event)
		req.JSONEq(string(expected), string(events[0].Payload))
	}
	// And the outsider gets nothing
	req.Empty(c3.received(t))
}

func TestRouter_EmitToRoom_Skips_Members_That_Left(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()
	c1, c2 := newFakeConn("c1"), newFakeConn("c2")
	req.NoError(r.Registry.Register(c1))
	req.NoError(r.Registry.Register(c2))
	req.NoError(r.Registry.Join("c1", "u1"))
	req.NoError(r.Registry.Join("c2", "u1"))
	req.NoError(r.Registry.Leave("c2", "u1"))

	req.NoError(r.Router.EmitToRoom(context.Background(), "u1", "ping", "x"))

	req.Len(c1.received(t), 1)
	req.Empty(c2.received(t))
}

func TestRouter_EmitToRoom_Failing_Member_Does_Not_Stop_Fanout(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()
	conns := []*fakeConn{newFakeConn("a"), newFakeConn("b"), newFakeConn("c")}
	for _, conn := range conns {
		req.NoError(r.Registry.Register(conn))
		req.NoError(r.Registry.Join(conn.ID(), "room"))
	}
	conns[1].failing = true

	err := r.Router.EmitToRoom(context.Background(), "room", "ping", map[string]int{"n": 1})

	req.NoError(err)
	req.Len(conns[0].received(t), 1)
	req.Empty(conns[1].received(t))
	req.Len(conns[2].received(t), 1)
}

func TestRouter_EmitToRoom_Empty_Room_Is_Not_An_Error(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()

	req.NoError(r.Router.EmitToRoom(context.Background(), "nobody", "ping", nil))
	req.Zero(r.Router.deliverLocal("nobody", "ping", json.RawMessage(`null`)))
}

func TestRouter_EmitToRoom_Unencodable_Payload(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()

	err := r.Router.EmitToRoom(context.Background(), "u1", "ping", make(chan int))

	req.Error(err)
}

func TestRouter_EmitToConnection_Ignores_Rooms(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()
	c1, c2 := newFakeConn("c1"), newFakeConn("c2")
	req.NoError(r.Registry.Register(c1))
	req.NoError(r.Registry.Register(c2))

	req.NoError(r.Router.EmitToConnection("c1", enums.SOCKET_EVENT_NOTIFICATIONS, []models.Notification{}))

	events := c1.received(t)
	req.Len(events, 1)
	req.Equal(enums.SOCKET_EVENT_NOTIFICATIONS, events[0].Event)
	req.JSONEq(`[]`, string(events[0].Payload))
	req.Empty(c2.received(t))
}

func TestRouter_EmitToConnection_Unknown(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()

	err := r.Router.EmitToConnection("ghost", "ping", nil)

	req.ErrorIs(err, errs.ErrUnknownConnection)
}

func TestRouter_EmitToConnection_Send_Failure_Is_Returned(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()
	conn := newFakeConn("c1")
	conn.failing = true
	req.NoError(r.Registry.Register(conn))

	err := r.Router.EmitToConnection("c1", "ping", nil)

	req.ErrorIs(err, errs.ErrConnectionClosed)
}

func TestRouter_Frames_Preserve_Order_Per_Connection(t *testing.T) {
	req := require.New(t)
	r := newTestRelay()
	conn := newFakeConn("c1")
	req.NoError(r.Registry.Register(conn))
	req.NoError(r.Registry.Join("c1", "u1"))

	for i := 0; i < 5; i++ {
		req.NoError(r.Router.EmitToRoom(context.Background(), "u1", "tick", i))
	}

	events := conn.received(t)
	req.Len(events, 5)
	for i, event := range events {
		var n int
		req.NoError(json.Unmarshal(event.Payload, &n))
		req.Equal(i, n)
	}
}

func TestEncodeFrame(t *testing.T) {
	req := require.New(t)

	frame, err := EncodeFrame("notification", map[string]string{"_id": "n1"})

	req.NoError(err)
	req.JSONEq(`{"event":"notification","payload":{"_id":"n1"}}`, string(frame))
}
