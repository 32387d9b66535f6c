package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256

	// Inbound message budget per connection
	inboundRate  = 10 // messages per second
	inboundBurst = 20
)

// Client is a WebSocket connection with paired read and write pumps.
// It implements app.Conn: Send is non-blocking and drops the message
// when the outbound buffer is full or the transport is closed.
type Client struct {
	id      string
	conn    *websocket.Conn
	session *session
	limiter *rate.Limiter
	send    chan []byte
	done    chan struct{}
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
}

// NewClient wraps an upgraded WebSocket connection.
func NewClient(id string, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		limiter: rate.NewLimiter(inboundRate, inboundBurst),
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
		logger:  logger,
	}
}

// ID implements app.Conn.
func (c *Client) ID() string {
	return c.id
}

// Send implements app.Conn. Best-effort: a closed connection or a full
// buffer drops the message without blocking.
func (c *Client) Send(message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped", "connID", c.id)
		return nil
	}
}

// Close implements app.Conn.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps and blocks until the
// connection drops.
func (c *Client) Run(sess *session) {
	c.session = sess
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection into the session.
func (c *Client) readPump() {
	defer func() {
		c.session.Close()
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "connID", c.id, "error", err)
			}
			break
		}

		if !c.limiter.Allow() {
			c.logger.Warn("inbound rate limit exceeded, message dropped", "connID", c.id)
			continue
		}

		c.session.HandleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket
// connection and keeps the peer alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
