package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"coffeeRelay/internal/errs"
	redisModels "coffeeRelay/internal/models/redis"
	socketModels "coffeeRelay/internal/models/socket"

	"go.uber.org/zap"
)

// Broker carries room emissions between relay processes. Every process,
// the publisher included, receives each published message once through its
// subscription and delivers it to its own connections.
type Broker interface {
	Publish(ctx context.Context, message redisModels.RedisPublishedMessage) error
	Subscribe(ctx context.Context, handler func(redisModels.RedisPublishedMessage)) (io.Closer, error)
}

// Router fans events out to the connections of a room.
type Router struct {
	registry *Registry
	broker   Broker
	logger   *zap.Logger
}

func NewRouter(registry *Registry, broker Broker, logger *zap.Logger) *Router {
	return &Router{
		registry: registry,
		broker:   broker,
		logger:   logger,
	}
}

// EmitToRoom delivers one copy of the event to every connection that is a
// member of room when the member lookup runs. Delivery is best effort: send
// failures are logged and skipped. The only error returned is a payload that
// cannot be encoded.
func (rt *Router) EmitToRoom(ctx context.Context, room, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}

	if rt.broker != nil {
		message := redisModels.RedisPublishedMessage{
			Event:   event,
			Room:    room,
			Payload: raw,
		}
		err := rt.broker.Publish(ctx, message)
		if err == nil {
			return nil
		}
		rt.logger.Warn("broker publish failed, delivering locally only",
			zap.String("room", room),
			zap.String("event", event),
			zap.Error(err),
		)
	}

	rt.deliverLocal(room, event, raw)
	return nil
}

// EmitToConnection delivers the event to exactly one connection, whatever
// rooms it is in.
func (rt *Router) EmitToConnection(id, event string, payload any) error {
	conn, ok := rt.registry.Connection(id)
	if !ok {
		return errs.ErrUnknownConnection
	}
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		return err
	}
	if err := conn.Send(frame); err != nil {
		return fmt.Errorf("send %s to %s: %w", event, id, err)
	}
	return nil
}

// deliverLocal writes an already encoded payload to the members of room on
// this process and reports how many sends were attempted.
func (rt *Router) deliverLocal(room, event string, payload json.RawMessage) int {
	conns := rt.registry.connectionsIn(room)
	if len(conns) == 0 {
		rt.logger.Debug("room has no local members", zap.String("room", room), zap.String("event", event))
		return 0
	}

	frame, err := EncodeFrame(event, payload)
	if err != nil {
		rt.logger.Error("failed to encode frame", zap.String("event", event), zap.Error(err))
		return 0
	}

	for _, conn := range conns {
		if err := conn.Send(frame); err != nil {
			rt.logger.Debug("dropped delivery",
				zap.String("connection_id", conn.ID()),
				zap.String("room", room),
				zap.String("event", event),
				zap.Error(err),
			)
		}
	}
	return len(conns)
}

func (rt *Router) handleBrokerMessage(message redisModels.RedisPublishedMessage) {
	rt.deliverLocal(message.Room, message.Event, message.Payload)
}

// EncodeFrame builds the wire envelope for an outbound event.
func EncodeFrame(event string, payload any) ([]byte, error) {
	frame, err := json.Marshal(socketModels.OutboundEvent{
		Event:   event,
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return frame, nil
}
