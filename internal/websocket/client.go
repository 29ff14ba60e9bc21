package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Send pings to peer with this period. Must be less than pongWait.
	maxMessageSize = 512                 // Maximum message size allowed from peer.

	sendBufferSize = 256
)

// State tracks a subscriber through its lifecycle. Transitions only
// move forward; there is no way back to StateOpen.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateFailed:
		return "failed"
	default:
		return "closed"
	}
}

// Client is the middleman between one websocket connection and the
// hub. Frames reach the peer only through the send channel; WritePump
// is the sole writer on the connection.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	state     atomic.Int32
	closeOnce sync.Once
	logger    *zap.Logger
}

// NewClient wraps an upgraded connection. The client starts in
// StateConnecting; hub registration moves it to StateOpen.
func NewClient(hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	c := &Client{
		ID:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	c.state.Store(int32(StateConnecting))
	return c
}

// State returns the client's current lifecycle state.
func (c *Client) State() State { return State(c.state.Load()) }

// transition advances the state machine. Backward moves are refused.
func (c *Client) transition(next State) {
	for {
		cur := c.state.Load()
		if int32(next) <= cur {
			return
		}
		if c.state.CompareAndSwap(cur, int32(next)) {
			return
		}
	}
}

// Fail marks the client's stream as broken by a push failure.
func (c *Client) Fail() { c.transition(StateFailed) }

// Done is closed once the client leaves the hub registry.
func (c *Client) Done() <-chan struct{} { return c.done }

// Enqueue offers a frame to the client without blocking. It reports
// false when the client is gone or its buffer is full; the caller is
// expected to deregister it.
func (c *Client) Enqueue(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// shutdown finalizes the client after hub deregistration.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.transition(StateClosing)
		close(c.done)
		c.transition(StateClosed)
	})
}

// ReadPump consumes frames from the peer until the connection drops
// or the client closes it. The stream is server-push only, so inbound
// payloads are discarded; the pump exists to service close and pong
// control frames.
func (c *Client) ReadPump() {
	defer func() {
		c.transition(StateClosing)
		c.hub.Disconnect(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error",
					zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}

// WritePump drains the send channel onto the connection and keeps the
// peer alive with pings. One frame per message; samples and alerts
// are self-contained JSON documents.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("websocket write error",
					zap.String("client_id", c.ID), zap.Error(err))
				c.Fail()
				c.hub.Disconnect(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Fail()
				c.hub.Disconnect(c)
				return
			}
		}
	}
}
