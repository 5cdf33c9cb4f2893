package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message")
		return nil
	}
}

func TestHub_QueuedGreetingPrecedesBroadcast(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	c := &Client{hub: h, send: make(chan []byte, 4)}
	require.True(t, c.offer([]byte("hello")))
	require.True(t, h.Register(c))

	h.Broadcast([]byte("update"))
	assert.Equal(t, "hello", string(receive(t, c)))
	assert.Equal(t, "update", string(receive(t, c)))
	assert.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_DropsSlowClients(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	slow := &Client{hub: h, send: make(chan []byte, 1)}
	require.True(t, h.Register(slow))

	h.Broadcast([]byte("a"))
	h.Broadcast([]byte("b"))

	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "a", string(receive(t, slow)))
	_, ok := <-slow.send
	assert.False(t, ok)
}

func TestHub_RegisterAfterStop(t *testing.T) {
	h := NewHub()
	h.Stop()
	h.Stop()
	assert.False(t, h.Register(&Client{hub: h, send: make(chan []byte, 1)}))
}
