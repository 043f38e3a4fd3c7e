package core

import "time"

// AuthState describes where a session is in the nickname handshake.
type AuthState int

const (
	// AuthNone means no nickname has been bound yet.
	AuthNone AuthState = iota
	// AuthAwaitingPassword means a reserved nickname was requested and
	// the next line is consumed as the admin password.
	AuthAwaitingPassword
	// AuthDone means the nickname is bound. Terminal: no renaming.
	AuthDone
)

// Session is the per-connection state the hub operates on. The transport
// owns the connection; the hub owns the session. All fields except ID,
// Conn and ConnectedAt are mutated only from the hub goroutine.
type Session struct {
	ID          string
	Conn        Conn
	ConnectedAt time.Time

	Nickname string
	IsAdmin  bool

	// pendingAdmin holds the candidate nickname while the session is in
	// the admin password challenge.
	pendingAdmin string

	// rooms is the set of room names this session has joined. Kept in
	// lock-step with Room membership by every join/leave/teardown path.
	rooms map[string]struct{}

	// released is set once teardown has run, so QUIT, KICK/BAN and the
	// transport disconnect path cannot double-clean.
	released bool
}

// NewSession constructs a session bound to a transport connection.
func NewSession(id string, conn Conn) *Session {
	return &Session{
		ID:          id,
		Conn:        conn,
		ConnectedAt: time.Now(),
		rooms:       make(map[string]struct{}),
	}
}

// State returns the session's position in the auth state machine.
func (s *Session) State() AuthState {
	switch {
	case s.Nickname != "":
		return AuthDone
	case s.pendingAdmin != "":
		return AuthAwaitingPassword
	default:
		return AuthNone
	}
}

// InRoom reports whether the session has joined the named room.
func (s *Session) InRoom(name string) bool {
	_, ok := s.rooms[name]
	return ok
}

// RoomCount returns how many rooms the session has joined.
func (s *Session) RoomCount() int {
	return len(s.rooms)
}
