package notifications

import (
	"log"
	"time"

	"inkwell/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeTimeout bounds a single write to the peer.
	writeTimeout = 10 * time.Second

	// pongTimeout is how long a connection may go without a pong before the
	// read side gives up.
	pongTimeout = 60 * time.Second

	// pingInterval must stay below pongTimeout so the peer always has a ping
	// to answer.
	pingInterval = (pongTimeout * 9) / 10

	// readLimit caps inbound frames; the realtime channel is server-to-client,
	// so clients have no business sending large payloads.
	readLimit = 16384

	// sendBufferSize is the per-connection outbound queue. Events beyond it
	// are dropped, not queued.
	sendBufferSize = 256
)

// WSHub is the minimal hub surface a client needs: somewhere to deregister
// itself and a name for metrics.
type WSHub interface {
	UnregisterClient(c *Client)
	Name() string
}

// Client owns one websocket connection and shuttles event frames between the
// hub and the wire.
type Client struct {
	Hub WSHub

	Conn *websocket.Conn

	// Send is the buffered outbound queue drained by WritePump.
	Send chan []byte

	UserID uint

	// IncomingHandler, when set, receives every frame read from the peer.
	IncomingHandler func(*Client, []byte)
}

// NewClient wraps a websocket connection for the given user.
func NewClient(hub WSHub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// ReadPump drains inbound frames until the connection dies, then deregisters
// the client. It also keeps the read deadline fresh off pongs.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("realtime read error (user %d): %v", c.UserID, err)
			}
			break
		}

		if c.IncomingHandler != nil {
			c.IncomingHandler(c, message)
		}
	}
}

// WritePump writes queued frames and periodic pings to the peer. One goroutine
// per connection; the websocket write side is not otherwise synchronized.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Send was closed by the hub.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a frame without blocking. A full buffer drops the frame and
// enqueues a gap notice instead so the frontend can re-fetch; a closed Send
// channel is swallowed. Both outcomes are counted.
func (c *Client) TrySend(message []byte) {
	defer func() {
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "full").Inc()
		log.Printf("realtime client %d (%s): send buffer full, dropping event", c.UserID, c.Hub.Name())

		dropNotice := []byte(`{"type":"messages_dropped","payload":{"reason":"buffer_full"}}`)
		select {
		case c.Send <- dropNotice:
		default:
			// Not even the notice fits; the client will resync on reconnect.
		}
	}
}
