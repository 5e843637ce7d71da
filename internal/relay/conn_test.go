package relay

import (
	"encoding/json"
	"sync"
	"testing"

	"coffeeRelay/internal/errs"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type received struct {
	Event   string
	Payload json.RawMessage
}

// fakeConn records every frame it is asked to send.
type fakeConn struct {
	id      string
	mu      sync.Mutex
	frames  [][]byte
	failing bool
	closed  bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing || c.closed {
		return errs.ErrConnectionClosed
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received(t *testing.T) []received {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var events []received
	for _, frame := range c.frames {
		var envelope struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(frame, &envelope))
		events = append(events, received{Event: envelope.Event, Payload: envelope.Payload})
	}
	return events
}

func newTestRelay(options ...Option) *Relay {
	return New(zap.NewNop(), options...)
}

