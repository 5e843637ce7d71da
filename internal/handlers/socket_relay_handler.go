package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"coffeeRelay/internal/enums"
	"coffeeRelay/internal/errs"
	"coffeeRelay/internal/models"
	socketModels "coffeeRelay/internal/models/socket"
	"coffeeRelay/internal/relay"
	"coffeeRelay/internal/services"
	"coffeeRelay/internal/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const presenceTimeout = 2 * time.Second

// PresenceTracker counts sockets per personal room across relay processes.
type PresenceTracker interface {
	Connected(ctx context.Context, userID string) error
	Disconnected(ctx context.Context, userID string) error
}

type SocketRelayHandler struct {
	relay               *relay.Relay
	notificationService *services.NotificationService
	presence            PresenceTracker
	upgrader            websocket.Upgrader
	clientOptions       SocketClientOptions
	requestTimeout      time.Duration
	logger              *zap.Logger

	mu       sync.Mutex
	draining bool
	active   sync.WaitGroup
}

type SocketRelayOption func(*SocketRelayHandler)

func WithPresenceTracker(presence PresenceTracker) SocketRelayOption {
	return func(sh *SocketRelayHandler) {
		sh.presence = presence
	}
}

func NewSocketRelayHandler(
	relayServer *relay.Relay,
	notificationService *services.NotificationService,
	clientOptions SocketClientOptions,
	requestTimeout time.Duration,
	logger *zap.Logger,
	options ...SocketRelayOption,
) *SocketRelayHandler {
	sh := &SocketRelayHandler{
		relay:               relayServer,
		notificationService: notificationService,
		clientOptions:       clientOptions,
		requestTimeout:      requestTimeout,
		logger:              logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, option := range options {
		option(sh)
	}
	return sh
}

// socketSession is what the dispatcher knows about one connection. claims
// is nil when authentication is disabled. rooms outlives the registry
// entry so presence can be cleared after Relay.Close.
type socketSession struct {
	client *SocketClient
	claims *models.Claims
	rooms  map[string]struct{}
}

func (s *socketSession) id() string {
	return s.client.ID()
}

func (s *socketSession) isAdmin() bool {
	return s.claims == nil || s.claims.Role == enums.ROLE_ADMIN
}

func (s *socketSession) canAccessUser(userID string) bool {
	return s.isAdmin() || s.claims.UserID == userID
}

func (sh *SocketRelayHandler) HandleSocketRoute(ctx *gin.Context) {
	claims, _ := ClaimsFromContext(ctx)

	if !sh.begin() {
		ctx.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	defer sh.active.Done()

	ws, err := sh.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		sh.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	session := &socketSession{
		client: NewSocketClient(uuid.NewString(), ws, sh.clientOptions, sh.logger),
		claims: claims,
		rooms:  make(map[string]struct{}),
	}
	if err := sh.relay.Registry.Register(session.client); err != nil {
		sh.logger.Warn("connection id reused", zap.String("connection_id", session.id()), zap.Error(err))
	}
	go session.client.WritePump()
	sh.logger.Info("socket connected", zap.String("connection_id", session.id()))

	connCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh.disconnect(session)

	session.client.ReadPump(func(message []byte) {
		sh.dispatch(connCtx, session, message)
	})
}

func (sh *SocketRelayHandler) begin() bool {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.draining {
		return false
	}
	sh.active.Add(1)
	return true
}

// Wait refuses new sockets and blocks until every open socket has been
// disconnected and its presence cleared, or ctx is done.
func (sh *SocketRelayHandler) Wait(ctx context.Context) error {
	sh.mu.Lock()
	sh.draining = true
	sh.mu.Unlock()

	done := make(chan struct{})
	go func() {
		sh.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (sh *SocketRelayHandler) disconnect(session *socketSession) {
	sh.relay.Registry.Unregister(session.id())
	_ = session.client.Close()

	rooms := make([]string, 0, len(session.rooms))
	for room := range session.rooms {
		sh.untrack(room)
		rooms = append(rooms, room)
	}
	sh.logger.Info("socket disconnected", zap.String("connection_id", session.id()), zap.Strings("rooms", rooms))
}

// dispatch handles one inbound frame. Frames of a connection are handled
// one at a time, in arrival order.
func (sh *SocketRelayHandler) dispatch(ctx context.Context, session *socketSession, message []byte) {
	var event socketModels.SocketEvent
	if err := json.Unmarshal(message, &event); err != nil || event.Event == "" {
		sh.reply(session, event, fmt.Errorf("%w: malformed envelope", errs.ErrInvalidPayload))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, sh.requestTimeout)
	defer cancel()

	var err error
	switch event.Event {
	case enums.SOCKET_EVENT_JOIN_ROOM:
		err = sh.handleJoinRoom(session, event.Payload)
	case enums.SOCKET_EVENT_LEAVE_ROOM:
		err = sh.handleLeaveRoom(session, event.Payload)
	case enums.SOCKET_EVENT_SEND_MESSAGE:
		err = sh.handleSendMessage(ctx, session, event.Payload)
	case enums.SOCKET_EVENT_GET_NOTIFICATIONS:
		err = sh.handleGetNotifications(ctx, session, event.Payload)
	case enums.SOCKET_EVENT_SEND_NOTIFICATION:
		err = sh.handleSendNotification(ctx, session, event.Payload)
	case enums.SOCKET_EVENT_MARK_NOTIFICATION_READ:
		err = sh.handleMarkNotificationRead(ctx, session, event.Payload)
	default:
		err = fmt.Errorf("%w: %s", errs.ErrUnknownEvent, event.Event)
	}

	if err != nil {
		sh.logger.Debug("socket event failed",
			zap.String("connection_id", session.id()),
			zap.String("event", event.Event),
			zap.Error(err))
	}
	sh.reply(session, event, err)
}

func (sh *SocketRelayHandler) handleJoinRoom(session *socketSession, payload json.RawMessage) error {
	room, err := decodeRoom(payload)
	if err != nil {
		return err
	}
	if !session.isAdmin() && room != session.claims.UserID {
		return errs.ErrForbidden
	}

	if err := sh.relay.Registry.Join(session.id(), room); err != nil {
		return err
	}
	if _, joined := session.rooms[room]; !joined {
		session.rooms[room] = struct{}{}
		sh.track(room)
	}
	return nil
}

func (sh *SocketRelayHandler) handleLeaveRoom(session *socketSession, payload json.RawMessage) error {
	room, err := decodeRoom(payload)
	if err != nil {
		return err
	}

	if err := sh.relay.Registry.Leave(session.id(), room); err != nil {
		return err
	}
	if _, joined := session.rooms[room]; joined {
		delete(session.rooms, room)
		sh.untrack(room)
	}
	return nil
}

// handleSendMessage relays customer messages to staff (and the customer's
// own room when given) and staff replies to the addressed room.
func (sh *SocketRelayHandler) handleSendMessage(ctx context.Context, session *socketSession, payload json.RawMessage) error {
	var message socketModels.SendMessagePayload
	if err := json.Unmarshal(payload, &message); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err)
	}
	if err := validators.ValidateStruct(&message); err != nil {
		return err
	}

	var rooms []string
	switch message.Sender {
	case enums.CHAT_SENDER_USER:
		if message.Room != "" && !session.canAccessUser(message.Room) {
			return errs.ErrForbidden
		}
		rooms = append(rooms, enums.ADMIN_ROOM)
		if message.Room != "" && message.Room != enums.ADMIN_ROOM {
			rooms = append(rooms, message.Room)
		}
	case enums.CHAT_SENDER_ADMIN:
		if !session.isAdmin() {
			return errs.ErrForbidden
		}
		if message.Room == "" {
			return fmt.Errorf("%w: room is required for admin messages", errs.ErrInvalidPayload)
		}
		rooms = append(rooms, message.Room)
	}

	for _, room := range rooms {
		if err := sh.relay.Router.EmitToRoom(ctx, room, enums.SOCKET_EVENT_RECEIVE_MESSAGE, message.ChatMessage); err != nil {
			return err
		}
	}
	return nil
}

// handleGetNotifications always answers with a notifications event; on a
// persistence failure the list is empty and the error is reported after it.
func (sh *SocketRelayHandler) handleGetNotifications(ctx context.Context, session *socketSession, payload json.RawMessage) error {
	userID, err := decodeString(payload)
	if err != nil {
		return err
	}
	if !session.canAccessUser(userID) {
		return errs.ErrForbidden
	}

	notifications, listErr := sh.notificationService.ListByUser(ctx, userID)
	if listErr != nil {
		notifications = []models.Notification{}
	}

	// the connection may have gone away while the query ran
	err = sh.relay.Router.EmitToConnection(session.id(), enums.SOCKET_EVENT_NOTIFICATIONS, notifications)
	if err != nil && !errors.Is(err, errs.ErrUnknownConnection) {
		sh.logger.Debug("error sending notifications", zap.String("connection_id", session.id()), zap.Error(err))
	}
	return listErr
}

func (sh *SocketRelayHandler) handleSendNotification(ctx context.Context, session *socketSession, payload json.RawMessage) error {
	if !session.isAdmin() {
		return errs.ErrForbidden
	}
	var request models.CreateNotificationRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err)
	}
	_, err := sh.notificationService.Create(ctx, &request)
	return err
}

func (sh *SocketRelayHandler) handleMarkNotificationRead(ctx context.Context, session *socketSession, payload json.RawMessage) error {
	id, err := decodeString(payload)
	if err != nil {
		return err
	}
	_, err = sh.notificationService.MarkRead(ctx, id, session.claims)
	return err
}

// reply acks requests that carry an ackId and reports failures of those
// that do not.
func (sh *SocketRelayHandler) reply(session *socketSession, event socketModels.SocketEvent, err error) {
	var sendErr error
	switch {
	case event.AckID != "":
		sendErr = sh.relay.Router.EmitToConnection(session.id(), enums.SOCKET_EVENT_ACK, socketModels.AckPayload{
			AckID:  event.AckID,
			Status: AckStatus(err),
		})
	case err != nil:
		sendErr = sh.relay.Router.EmitToConnection(session.id(), enums.SOCKET_EVENT_ERROR, socketModels.ErrorPayload{
			Event:   event.Event,
			Code:    AckStatus(err),
			Message: err.Error(),
		})
	}
	if sendErr != nil && !errors.Is(sendErr, errs.ErrUnknownConnection) {
		sh.logger.Debug("error replying", zap.String("connection_id", session.id()), zap.Error(sendErr))
	}
}

func (sh *SocketRelayHandler) track(room string) {
	if sh.presence == nil || room == enums.ADMIN_ROOM {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	if err := sh.presence.Connected(ctx, room); err != nil {
		sh.logger.Warn("error recording presence", zap.String("room", room), zap.Error(err))
	}
}

func (sh *SocketRelayHandler) untrack(room string) {
	if sh.presence == nil || room == enums.ADMIN_ROOM {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	if err := sh.presence.Disconnected(ctx, room); err != nil {
		sh.logger.Warn("error clearing presence", zap.String("room", room), zap.Error(err))
	}
}

// AckStatus maps a handler error to the status code sent back to clients.
func AckStatus(err error) string {
	switch {
	case err == nil:
		return enums.ACK_STATUS_OK
	case errors.Is(err, errs.ErrUnknownConnection):
		return enums.ACK_STATUS_UNKNOWN_CONNECTION
	case errors.Is(err, errs.ErrInvalidPayload),
		errors.Is(err, errs.ErrNotificationNotFound):
		return enums.ACK_STATUS_INVALID_PAYLOAD
	case errors.Is(err, errs.ErrForbidden):
		return enums.ACK_STATUS_FORBIDDEN
	case errors.Is(err, errs.ErrUnknownEvent):
		return enums.ACK_STATUS_UNKNOWN_EVENT
	default:
		return enums.ACK_STATUS_PERSISTENCE_ERROR
	}
}

func decodeString(payload json.RawMessage) (string, error) {
	var value string
	if err := json.Unmarshal(payload, &value); err != nil {
		return "", fmt.Errorf("%w: expected a string", errs.ErrInvalidPayload)
	}
	if value == "" {
		return "", fmt.Errorf("%w: empty value", errs.ErrInvalidPayload)
	}
	return value, nil
}

func decodeRoom(payload json.RawMessage) (string, error) {
	room, err := decodeString(payload)
	if err != nil {
		return "", err
	}
	if err := validators.ValidateRoom(room); err != nil {
		return "", err
	}
	return room, nil
}
