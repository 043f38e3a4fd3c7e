package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeConn captures reply lines for assertions.
type fakeConn struct {
	mu     sync.Mutex
	closed bool
	lines  chan string
}

func newFakeConn() *fakeConn {
	return &fakeConn{lines: make(chan string, 128)}
}

func (c *fakeConn) Send(line string) error {
	if !c.IsOpen() {
		return errors.New("connection closed")
	}
	select {
	case c.lines <- line:
		return nil
	default:
		return errors.New("buffer full")
	}
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *fakeConn) RemoteAddr() string { return "test:0" }

// mapCreds is a plaintext credential table for tests.
type mapCreds map[string]string

func (m mapCreds) IsReserved(nick string) bool {
	_, ok := m[nick]
	return ok
}

func (m mapCreds) Verify(nick, password string) bool {
	stored, ok := m[nick]
	return ok && stored == password
}

var sessionSeq atomic.Int64

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return newTestHubWith(t, DefaultLimits(), nil)
}

func newAdminTestHub(t *testing.T) *Hub {
	t.Helper()
	return newTestHubWith(t, DefaultLimits(), mapCreds{"admin": "securepass123"})
}

func newTestHubWith(t *testing.T, limits Limits, creds Credentials) *Hub {
	t.Helper()

	hub := NewHub(limits, creds, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connect(t *testing.T, hub *Hub) (*Session, *fakeConn) {
	t.Helper()

	conn := newFakeConn()
	sess := NewSession(fmt.Sprintf("s-%d", sessionSeq.Add(1)), conn)
	hub.Register(sess)
	return sess, conn
}

func login(t *testing.T, hub *Hub, nick string) (*Session, *fakeConn) {
	t.Helper()

	sess, conn := connect(t, hub)
	hub.Submit(sess, "NICK "+nick)
	mustLine(t, conn, "Your nickname is now "+nick)
	return sess, conn
}

func loginAdmin(t *testing.T, hub *Hub) (*Session, *fakeConn) {
	t.Helper()

	sess, conn := connect(t, hub)
	hub.Submit(sess, "NICK admin")
	mustLine(t, conn, "Enter password:")
	hub.Submit(sess, "securepass123")
	mustLine(t, conn, "Admin access granted")
	return sess, conn
}

// mustLine waits for a reply line containing substr, discarding lines
// that do not match.
func mustLine(t *testing.T, c *fakeConn, substr string) string {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case line := <-c.lines:
			if strings.Contains(line, substr) {
				return line
			}
		case <-deadline:
			t.Fatalf("expected line containing %q not received", substr)
			return ""
		}
	}
}

// nextLine returns the next reply line in order, failing on timeout.
func nextLine(t *testing.T, c *fakeConn) string {
	t.Helper()

	select {
	case line := <-c.lines:
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reply line, got none")
		return ""
	}
}

// waitClosed polls until the hub has closed the connection.
func waitClosed(t *testing.T, c *fakeConn) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !c.IsOpen() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected connection to be closed")
}
