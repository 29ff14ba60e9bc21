package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_RegisterAndCount(t *testing.T) {
	hub := startHub(t)
	a := NewClient(hub, nil, zap.NewNop())
	b := NewClient(hub, nil, zap.NewNop())

	assert.Equal(t, StateConnecting, a.State())

	hub.Register(a)
	hub.Register(b)

	assert.Eventually(t, func() bool { return hub.Count() == 2 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, StateOpen, a.State())
}

func TestHub_DisconnectIsIdempotent(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, zap.NewNop())

	hub.Register(c)
	assert.Eventually(t, func() bool { return hub.Count() == 1 },
		time.Second, 5*time.Millisecond)

	hub.Disconnect(c)
	hub.Disconnect(c)

	assert.Eventually(t, func() bool { return hub.Count() == 0 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, StateClosed, c.State())

	select {
	case <-c.Done():
	default:
		t.Fatal("done channel should be closed after disconnect")
	}
}

func TestHub_BroadcastDropsFailedSubscriberOnly(t *testing.T) {
	hub := startHub(t)
	healthy := NewClient(hub, nil, zap.NewNop())
	stuck := NewClient(hub, nil, zap.NewNop())

	hub.Register(healthy)
	hub.Register(stuck)
	require.Eventually(t, func() bool { return hub.Count() == 2 },
		time.Second, 5*time.Millisecond)

	// Jam the stuck client's outbound buffer so its next push fails.
	for i := 0; i < sendBufferSize; i++ {
		require.True(t, stuck.Enqueue([]byte("x")))
	}

	hub.BroadcastJSON("alert", map[string]string{"msg": "spike"})

	assert.Eventually(t, func() bool { return hub.Count() == 1 },
		time.Second, 5*time.Millisecond)
	// Failed converges to Closed once the hub finishes removal.
	assert.Equal(t, StateClosed, stuck.State())
	assert.Equal(t, StateOpen, healthy.State())

	// The healthy subscriber got the frame.
	select {
	case msg := <-healthy.send:
		assert.Contains(t, string(msg), "alert")
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber never received the broadcast")
	}
}

func TestClient_StateNeverReturnsToOpen(t *testing.T) {
	c := NewClient(nil, nil, zap.NewNop())
	c.transition(StateOpen)
	c.Fail()
	c.transition(StateOpen)

	assert.Equal(t, StateFailed, c.State())
}

func TestClient_EnqueueAfterShutdownFails(t *testing.T) {
	c := NewClient(nil, nil, zap.NewNop())
	c.transition(StateOpen)
	c.shutdown()

	assert.False(t, c.Enqueue([]byte("late")))
	assert.Equal(t, StateClosed, c.State())
}
