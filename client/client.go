// Package client is a Go client for the relay's WebSocket protocol.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"coffeeRelay/internal/enums"
	"coffeeRelay/internal/errs"
	socketModels "coffeeRelay/internal/models/socket"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	ErrTimeout          = errs.ErrTimeout
	ErrConnectionClosed = errs.ErrConnectionClosed
)

type Options struct {
	// AckTimeout bounds the wait for an ack. Defaults to 5s.
	AckTimeout time.Duration
	// EventBuffer is the capacity of Events(). Defaults to 64.
	EventBuffer int
	// Header is sent with the upgrade request, e.g. Authorization.
	Header http.Header
	Dialer *websocket.Dialer
}

// Event is a server event other than an ack.
type Event struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// AckError is returned when the server acks a request with a non-ok status.
type AckError struct {
	Event  string
	Status string
}

func (e *AckError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Event, e.Status)
}

type Client struct {
	conn       *websocket.Conn
	ackTimeout time.Duration

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan string

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	if opts.AckTimeout <= 0 {
		opts.AckTimeout = 5 * time.Second
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, resp, err := dialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		conn:       conn,
		ackTimeout: opts.AckTimeout,
		pending:    make(map[string]chan string),
		events:     make(chan Event, opts.EventBuffer),
		done:       make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Events delivers server-initiated events in arrival order. When the buffer
// is full new events are dropped. The channel is closed once the
// connection ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

func (c *Client) JoinRoom(ctx context.Context, room string) error {
	return c.request(ctx, enums.SOCKET_EVENT_JOIN_ROOM, room)
}

func (c *Client) LeaveRoom(ctx context.Context, room string) error {
	return c.request(ctx, enums.SOCKET_EVENT_LEAVE_ROOM, room)
}

// SendMessage relays a chat message. room may be empty for customer messages.
func (c *Client) SendMessage(ctx context.Context, message Message, room string) error {
	return c.request(ctx, enums.SOCKET_EVENT_SEND_MESSAGE, sendMessagePayload{
		Message: message,
		Room:    room,
	})
}

// GetNotifications asks for the user's notifications. The list arrives on
// Events() as a "notifications" event before this call returns.
func (c *Client) GetNotifications(ctx context.Context, userID string) error {
	return c.request(ctx, enums.SOCKET_EVENT_GET_NOTIFICATIONS, userID)
}

func (c *Client) SendNotification(ctx context.Context, request NotificationRequest) error {
	return c.request(ctx, enums.SOCKET_EVENT_SEND_NOTIFICATION, request)
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.request(ctx, enums.SOCKET_EVENT_MARK_NOTIFICATION_READ, id)
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// request sends event with a fresh ackId and waits for the matching ack.
func (c *Client) request(ctx context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}

	ackID := uuid.NewString()
	reply := make(chan string, 1)
	c.pendingMu.Lock()
	c.pending[ackID] = reply
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, ackID)
		c.pendingMu.Unlock()
	}()

	c.writeMu.Lock()
	err = c.conn.WriteJSON(socketModels.SocketEvent{Event: event, Payload: raw, AckID: ackID})
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionClosed, err)
	}

	timer := time.NewTimer(c.ackTimeout)
	defer timer.Stop()

	select {
	case status := <-reply:
		if status != enums.ACK_STATUS_OK {
			return &AckError{Event: event, Status: status}
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: no ack for %s after %s", ErrTimeout, event, c.ackTimeout)
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrConnectionClosed
	}
}

func (c *Client) readLoop() {
	defer func() {
		close(c.done)
		close(c.events)
	}()

	for {
		var event Event
		if err := c.conn.ReadJSON(&event); err != nil {
			return
		}

		if event.Event != enums.SOCKET_EVENT_ACK {
			select {
			case c.events <- event:
			default:
			}
			continue
		}

		var ack socketModels.AckPayload
		if err := json.Unmarshal(event.Payload, &ack); err != nil {
			continue
		}
		c.pendingMu.Lock()
		reply, ok := c.pending[ack.AckID]
		c.pendingMu.Unlock()
		if ok {
			reply <- ack.Status
		}
	}
}
