package core

// Conn is the transport-side view of a client connection. Sends are
// best-effort: a closed or congested transport returns an error and the
// hub moves on.
type Conn interface {
	// Send queues one reply line for delivery.
	Send(line string) error
	// Close tears the connection down. Idempotent.
	Close()
	// IsOpen reports whether the transport can still accept writes.
	IsOpen() bool
	// RemoteAddr returns the peer address for diagnostics.
	RemoteAddr() string
}
