package handlers

import (
	"sync"
	"time"

	"coffeeRelay/internal/errs"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type SocketClientOptions struct {
	SendBuffer     int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
}

func (o SocketClientOptions) pingPeriod() time.Duration {
	return (o.PongWait * 9) / 10
}

// SocketClient is one upgraded connection. Frames are queued by Send and
// written by WritePump, the only goroutine that writes to the socket.
type SocketClient struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	options   SocketClientOptions
	logger    *zap.Logger
}

func NewSocketClient(id string, conn *websocket.Conn, options SocketClientOptions, logger *zap.Logger) *SocketClient {
	return &SocketClient{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, options.SendBuffer),
		done:    make(chan struct{}),
		options: options,
		logger:  logger.With(zap.String("connection_id", id)),
	}
}

func (c *SocketClient) ID() string {
	return c.id
}

// Send never blocks. A full queue drops the frame.
func (c *SocketClient) Send(frame []byte) error {
	select {
	case <-c.done:
		return errs.ErrConnectionClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return errs.ErrConnectionClosed
	default:
		return errs.ErrSendQueueFull
	}
}

// Close asks WritePump to send a close frame and release the socket.
func (c *SocketClient) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

func (c *SocketClient) Done() <-chan struct{} {
	return c.done
}

// ReadPump hands every text frame to handle until the peer goes away or the
// pong deadline passes.
func (c *SocketClient) ReadPump(handle func(message []byte)) {
	c.conn.SetReadLimit(c.options.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.options.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.options.PongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("unexpected socket close", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		handle(message)
	}
}

func (c *SocketClient) WritePump() {
	ticker := time.NewTicker(c.options.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("error writing frame", zap.Error(err))
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			c.drain()
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// drain flushes frames queued before Close.
func (c *SocketClient) drain() {
	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}
