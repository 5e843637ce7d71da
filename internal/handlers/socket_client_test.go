package handlers

import (
	"testing"
	"time"

	"coffeeRelay/internal/errs"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSocketClient_Send_Queue(t *testing.T) {
	client := NewSocketClient("c1", nil, SocketClientOptions{
		SendBuffer: 2,
		PongWait:   time.Second,
		WriteWait:  time.Second,
	}, zap.NewNop())

	assert.Equal(t, "c1", client.ID())
	assert.NoError(t, client.Send([]byte("1")))
	assert.NoError(t, client.Send([]byte("2")))
	assert.ErrorIs(t, client.Send([]byte("3")), errs.ErrSendQueueFull)

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
	assert.ErrorIs(t, client.Send([]byte("4")), errs.ErrConnectionClosed)

	select {
	case <-client.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}
