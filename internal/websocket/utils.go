package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Deadlines for the session stream. Reads wait long because a client
// may sit on a question without sending anything; writes are paced by
// the one-second tick and must not wedge the session fan-out.
const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// Conn wraps a gorilla connection with a write mutex. The session
// stream writes from two goroutines (the event forwarder and the
// reader loop's replies) and gorilla allows only one writer at a time.
type Conn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewConn wraps an upgraded connection.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// WriteTyped sends a strongly-typed payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline. Reads are single-goroutine and need no lock.
func (c *Conn) ReadJSON(v interface{}) error {
	c.conn.SetReadDeadline(time.Now().Add(readWait))
	return c.conn.ReadJSON(v)
}
