package http

import (
	"context"
	"errors"
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

// outboundBuffer is how many reply lines may queue per connection
// before further sends are dropped as slow-consumer overflow.
const outboundBuffer = 64

var (
	errConnClosed     = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

// wsConn adapts a WebSocket connection to core.Conn. Sends queue onto a
// buffered channel drained by writeLoop, so the hub never blocks on a
// slow peer: a full buffer fails the send and the hub logs and moves on.
type wsConn struct {
	conn   *websocket.Conn
	remote string
	log    *zerolog.Logger

	out chan string

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func newWSConn(conn *websocket.Conn, remote string, logger *zerolog.Logger) *wsConn {
	return &wsConn{
		conn:   conn,
		remote: remote,
		log:    logger,
		out:    make(chan string, outboundBuffer),
		done:   make(chan struct{}),
	}
}

// Send queues one line for delivery.
func (c *wsConn) Send(line string) error {
	if !c.IsOpen() {
		return errConnClosed
	}
	select {
	case c.out <- line:
		return nil
	default:
		return errSendBufferFull
	}
}

// Close tears the connection down. Idempotent; safe from any goroutine.
func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	_ = c.conn.Close(websocket.StatusNormalClosure, "closing")
}

// IsOpen reports whether the transport still accepts writes.
func (c *wsConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// RemoteAddr returns the peer address.
func (c *wsConn) RemoteAddr() string {
	return c.remote
}

// writeLoop drains queued lines into text frames until the connection
// or context closes.
func (c *wsConn) writeLoop(ctx context.Context) {
	for {
		select {
		case line := <-c.out:
			if err := c.conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
				c.log.Debug().Err(err).Str("remote", c.remote).Msg("ws write failed")
				c.Close()
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
