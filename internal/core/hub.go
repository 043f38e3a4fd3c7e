package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Limits are the protocol constants, fixed at startup.
type Limits struct {
	MaxMessageLength int
	MaxRoomsPerUser  int
	MaxUsersPerRoom  int
}

// DefaultLimits returns the protocol defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxMessageLength: 200,
		MaxRoomsPerUser:  5,
		MaxUsersPerRoom:  100,
	}
}

// Credentials is the reserved-nickname table consulted by the NICK
// handshake. Implemented by the auth package.
type Credentials interface {
	IsReserved(nick string) bool
	Verify(nick, password string) bool
}

// ModerationStore persists ban/mute changes. Implemented by store.Store;
// may be nil, in which case moderation state is memory-only.
type ModerationStore interface {
	AddBan(ctx context.Context, nick string) error
	RemoveBan(ctx context.Context, nick string) error
	AddMute(ctx context.Context, nick string) error
	RemoveMute(ctx context.Context, nick string) error
}

// Stats is a point-in-time summary served to the diagnostics API.
type Stats struct {
	Sessions int `json:"sessions"`
	Rooms    int `json:"rooms"`
	Banned   int `json:"banned"`
	Muted    int `json:"muted"`
}

type envelopeKind int

const (
	envelopeRegister envelopeKind = iota
	envelopeLine
	envelopeUnregister
	envelopeSnapshot
)

type envelope struct {
	kind    envelopeKind
	session *Session
	line    string
	stats   chan Stats
}

// Hub owns all shared chat state: sessions, the identity registry, the
// moderation lists and the room directory. Every inbound line, across
// all connections, funnels through one queue and is handled to
// completion by the single Run goroutine, so handlers never interleave
// and no locks are needed around the aggregate.
type Hub struct {
	limits     Limits
	creds      Credentials
	store      ModerationStore
	log        zerolog.Logger
	in         chan envelope
	sessions   map[*Session]struct{}
	registry   *registry
	moderation *moderation
	rooms      *directory
}

// NewHub constructs a hub. creds and store may be nil.
func NewHub(limits Limits, creds Credentials, store ModerationStore, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		limits:     limits,
		creds:      creds,
		store:      store,
		log:        *logger,
		in:         make(chan envelope, 128),
		sessions:   make(map[*Session]struct{}),
		registry:   newRegistry(),
		moderation: newModeration(),
		rooms:      newDirectory(),
	}
}

// SeedBans preloads the ban list. Call before Run.
func (h *Hub) SeedBans(nicks []string) {
	for _, n := range nicks {
		h.registry.ban(n)
	}
}

// SeedMutes preloads the mute list. Call before Run.
func (h *Hub) SeedMutes(nicks []string) {
	for _, n := range nicks {
		h.moderation.mute(n)
	}
}

// Register hands a new session to the hub.
func (h *Hub) Register(s *Session) {
	h.in <- envelope{kind: envelopeRegister, session: s}
}

// Unregister runs disconnect cleanup for a session. Safe to call after
// the session already quit or was kicked.
func (h *Hub) Unregister(s *Session) {
	h.in <- envelope{kind: envelopeUnregister, session: s}
}

// Submit enqueues one raw protocol line from a session.
func (h *Hub) Submit(s *Session, line string) {
	h.in <- envelope{kind: envelopeLine, session: s, line: line}
}

// Snapshot serves a consistent state summary through the command queue.
func (h *Hub) Snapshot(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.in <- envelope{kind: envelopeSnapshot, stats: reply}:
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

// Run processes the command queue until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-h.in:
			switch env.kind {
			case envelopeRegister:
				h.sessions[env.session] = struct{}{}
				h.log.Debug().Str("session", env.session.ID).Str("remote", env.session.Conn.RemoteAddr()).Msg("session registered")
			case envelopeLine:
				h.handleLine(env.session, env.line)
			case envelopeUnregister:
				h.teardown(env.session, "disconnected")
			case envelopeSnapshot:
				env.stats <- Stats{
					Sessions: len(h.sessions),
					Rooms:    h.rooms.count(),
					Banned:   len(h.registry.banned),
					Muted:    len(h.moderation.muted),
				}
			}
		}
	}
}

func (h *Hub) handleLine(s *Session, raw string) {
	if s.released {
		return
	}
	line := strings.TrimSpace(raw)

	// The line after a reserved NICK is the password attempt, consumed
	// exactly once whatever the outcome.
	if s.State() == AuthAwaitingPassword {
		h.handlePassword(s, line)
		return
	}
	if line == "" {
		return
	}

	cmd, perr := ParseLine(line)
	if perr != nil {
		h.sendError(s, perr)
		return
	}

	if s.State() != AuthDone && cmd.Kind != CommandNick {
		h.sendError(s, coreError(ErrCodeAuthRequired, "You must set a nickname first. Use: NICK <name>"))
		return
	}

	switch cmd.Kind {
	case CommandNick:
		h.handleNick(s, cmd)
	case CommandCreate:
		h.handleCreate(s, cmd)
	case CommandJoin:
		h.handleJoin(s, cmd)
	case CommandPart:
		h.handlePart(s, cmd)
	case CommandMsg:
		h.handleMsg(s, cmd)
	case CommandPrivMsg:
		h.handlePrivMsg(s, cmd)
	case CommandWho:
		h.handleWho(s, cmd)
	case CommandList:
		h.handleList(s)
	case CommandTopic:
		h.handleTopic(s, cmd)
	case CommandKick:
		h.handleKick(s, cmd)
	case CommandBan:
		h.handleBan(s, cmd)
	case CommandUnban:
		h.handleUnban(s, cmd)
	case CommandMute:
		h.handleMute(s, cmd)
	case CommandUnmute:
		h.handleUnmute(s, cmd)
	case CommandWhoAmI:
		h.handleWhoAmI(s)
	case CommandQuit:
		h.handleQuit(s)
	case CommandUnknown:
		// Unknown verbs are dropped without a reply.
		h.log.Debug().Str("session", s.ID).Str("line", line).Msg("unknown command ignored")
	}
}

func (h *Hub) handlePassword(s *Session, attempt string) {
	nick := s.pendingAdmin
	s.pendingAdmin = ""

	if h.creds == nil || !h.creds.Verify(nick, attempt) {
		h.sendError(s, coreError(ErrCodeWrongPassword, "Incorrect password. Use NICK "+nick+" to try again."))
		h.log.Info().Str("session", s.ID).Str("nick", nick).Msg("admin password rejected")
		return
	}
	// Two sessions can pass the challenge for the same name; the
	// registry stays authoritative.
	if err := h.registry.claim(nick, s); err != nil {
		h.sendError(s, coreError(ErrCodeUsernameTaken, "Username \""+nick+"\" is already taken."))
		return
	}
	s.Nickname = nick
	s.IsAdmin = true
	h.send(s, "Admin access granted. Your nickname is now "+nick)
	h.log.Info().Str("session", s.ID).Str("nick", nick).Msg("admin logged in")
}

func (h *Hub) handleNick(s *Session, cmd Command) {
	if cmd.Nick == "" {
		h.sendError(s, coreError(ErrCodeEmptyUsername, "Username cannot be empty."))
		return
	}
	if s.State() == AuthDone {
		h.sendError(s, coreError(ErrCodeUsernameImmutable, "You cannot change your username after setting it."))
		return
	}
	if h.registry.lookup(cmd.Nick) != nil {
		h.sendError(s, coreError(ErrCodeUsernameTaken, "Username \""+cmd.Nick+"\" is already taken."))
		return
	}
	if h.creds != nil && h.creds.IsReserved(cmd.Nick) {
		s.pendingAdmin = cmd.Nick
		h.send(s, "Enter password:")
		return
	}
	if err := h.registry.claim(cmd.Nick, s); err != nil {
		h.sendError(s, coreError(ErrCodeUsernameTaken, "Username \""+cmd.Nick+"\" is already taken."))
		return
	}
	s.Nickname = cmd.Nick
	h.send(s, "Your nickname is now "+cmd.Nick)
	h.log.Info().Str("session", s.ID).Str("nick", cmd.Nick).Msg("nickname bound")
}

func (h *Hub) handleCreate(s *Session, cmd Command) {
	if _, err := h.rooms.create(cmd.Room, cmd.Password); err != nil {
		h.sendError(s, coreError(ErrCodeRoomExists, "Room \""+cmd.Room+"\" already exists."))
		return
	}
	if cmd.Password != "" {
		h.send(s, "Room \""+cmd.Room+"\" created. Password is set.")
	} else {
		h.send(s, "Room \""+cmd.Room+"\" created. No password required.")
	}
	h.log.Info().Str("nick", s.Nickname).Str("room", cmd.Room).Bool("password", cmd.Password != "").Msg("room created")
}

func (h *Hub) handleJoin(s *Session, cmd Command) {
	if h.registry.isBanned(s.Nickname) {
		h.send(s, stamped("You are banned from this server."))
		s.Conn.Close()
		return
	}
	if !s.InRoom(cmd.Room) && s.RoomCount() >= h.limits.MaxRoomsPerUser {
		h.sendError(s, coreError(ErrCodeTooManyRooms, fmt.Sprintf("You cannot join more than %d rooms.", h.limits.MaxRoomsPerUser)))
		return
	}
	room := h.rooms.get(cmd.Room)
	if room == nil {
		h.sendError(s, coreError(ErrCodeRoomNotFound, "Room \""+cmd.Room+"\" does not exist. Use CREATE "+cmd.Room+" [password] to create it."))
		return
	}
	if room.Password != "" && room.Password != cmd.Password {
		h.sendError(s, coreError(ErrCodeWrongRoomPassword, "Incorrect room password."))
		return
	}
	if !room.has(s.Nickname) && room.size() >= h.limits.MaxUsersPerRoom {
		h.sendError(s, coreError(ErrCodeRoomFull, fmt.Sprintf("Room \"%s\" is full (limit %d).", cmd.Room, h.limits.MaxUsersPerRoom)))
		return
	}
	room.add(s.Nickname)
	s.rooms[cmd.Room] = struct{}{}
	h.send(s, stamped("You joined "+cmd.Room))
	h.broadcastRoom(s.Nickname+" joined "+cmd.Room, cmd.Room, nil)
}

func (h *Hub) handlePart(s *Session, cmd Command) {
	room := h.rooms.get(cmd.Room)
	if room == nil || !room.has(s.Nickname) {
		h.sendError(s, coreError(ErrCodeNotRoomMember, "You are not in room \""+cmd.Room+"\"."))
		return
	}
	room.remove(s.Nickname)
	delete(s.rooms, cmd.Room)
	h.broadcastRoom(s.Nickname+" left "+cmd.Room, cmd.Room, nil)
	h.rooms.removeIfEmpty(cmd.Room)
	h.send(s, "Left room \""+cmd.Room+"\".")
}

func (h *Hub) handleMsg(s *Session, cmd Command) {
	// Muting is enforced here and again inside the broadcast engine.
	if h.moderation.isMuted(s.Nickname) {
		h.sendError(s, coreError(ErrCodeMuted, "You are muted and cannot send messages."))
		return
	}
	// The target is checked against full membership, not a separate
	// active-room pointer.
	room := h.rooms.get(cmd.Room)
	if room == nil || !room.has(s.Nickname) {
		h.sendError(s, coreError(ErrCodeNotRoomMember, "You are not in room \""+cmd.Room+"\"."))
		return
	}
	h.broadcastRoom("["+cmd.Room+"] "+s.Nickname+": "+cmd.Text, cmd.Room, s)
}

func (h *Hub) handlePrivMsg(s *Session, cmd Command) {
	// Private messages bypass rooms and muting entirely.
	target := h.registry.lookup(cmd.Nick)
	if target == nil {
		h.sendError(s, coreError(ErrCodeRecipientNotFound, "User \""+cmd.Nick+"\" not found."))
		return
	}
	h.send(s, stamped("(Private) To "+cmd.Nick+": "+cmd.Text))
	h.send(target, stamped("(Private) From "+s.Nickname+": "+cmd.Text))
}

func (h *Hub) handleWho(s *Session, cmd Command) {
	room := h.rooms.get(cmd.Room)
	switch {
	case room == nil:
		h.send(s, "Room "+cmd.Room+" does not exist.")
	case room.empty():
		h.send(s, "Room "+cmd.Room+" exists but has no users.")
	default:
		h.send(s, "Users in "+cmd.Room+": "+strings.Join(room.Members(), ", "))
	}
}

func (h *Hub) handleList(s *Session) {
	names := h.rooms.names()
	if len(names) == 0 {
		h.send(s, "No active rooms.")
		return
	}
	h.send(s, "Active rooms: "+strings.Join(names, ", "))
}

func (h *Hub) handleTopic(s *Session, cmd Command) {
	if !s.IsAdmin {
		h.sendError(s, coreError(ErrCodeNotAdmin, "Only admins can set topics."))
		return
	}
	room := h.rooms.get(cmd.Room)
	if room == nil {
		h.sendError(s, coreError(ErrCodeRoomNotFound, "Room \""+cmd.Room+"\" does not exist."))
		return
	}
	room.Topic = cmd.Text
	h.broadcastRoom("Topic for "+cmd.Room+" changed to: "+cmd.Text, cmd.Room, nil)
}

func (h *Hub) handleKick(s *Session, cmd Command) {
	if !s.IsAdmin {
		h.sendError(s, coreError(ErrCodeNotAdmin, "You are not an admin."))
		return
	}
	target := h.registry.lookup(cmd.Nick)
	if target == nil {
		h.sendError(s, coreError(ErrCodeRecipientNotFound, "User \""+cmd.Nick+"\" not found."))
		return
	}
	reason := cmd.Reason
	if reason == "" {
		reason = "No reason specified"
	}
	h.send(target, "You have been kicked by an admin. Reason: "+reason)
	h.teardown(target, "disconnected")
	target.Conn.Close()
	h.broadcastAll("User " + cmd.Nick + " was kicked by an admin.")
	h.log.Info().Str("admin", s.Nickname).Str("target", cmd.Nick).Str("reason", reason).Msg("user kicked")
}

func (h *Hub) handleBan(s *Session, cmd Command) {
	if !s.IsAdmin {
		h.sendError(s, coreError(ErrCodeNotAdmin, "You are not an admin."))
		return
	}
	// Only connected users can be banned by name.
	target := h.registry.lookup(cmd.Nick)
	if target == nil {
		h.sendError(s, coreError(ErrCodeRecipientNotFound, "User \""+cmd.Nick+"\" not found."))
		return
	}
	h.registry.ban(cmd.Nick)
	h.persist("add ban", cmd.Nick, func(ctx context.Context) error { return h.store.AddBan(ctx, cmd.Nick) })
	h.teardown(target, "disconnected")
	target.Conn.Close()
	h.broadcastAll("User " + cmd.Nick + " has been banned by an admin.")
	h.log.Info().Str("admin", s.Nickname).Str("target", cmd.Nick).Msg("user banned")
}

func (h *Hub) handleUnban(s *Session, cmd Command) {
	if !s.IsAdmin {
		h.sendError(s, coreError(ErrCodeNotAdmin, "Only admins can unban users."))
		return
	}
	if !h.registry.unban(cmd.Nick) {
		h.sendError(s, coreError(ErrCodeNotBanned, "User \""+cmd.Nick+"\" is not banned."))
		return
	}
	h.persist("remove ban", cmd.Nick, func(ctx context.Context) error { return h.store.RemoveBan(ctx, cmd.Nick) })
	h.send(s, stamped("User \""+cmd.Nick+"\" has been unbanned."))
	h.broadcastAll("User \"" + cmd.Nick + "\" has been unbanned by " + s.Nickname + ".")
	h.log.Info().Str("admin", s.Nickname).Str("target", cmd.Nick).Msg("user unbanned")
}

func (h *Hub) handleMute(s *Session, cmd Command) {
	if !s.IsAdmin {
		h.sendError(s, coreError(ErrCodeNotAdmin, "You are not an admin."))
		return
	}
	h.moderation.mute(cmd.Nick)
	h.persist("add mute", cmd.Nick, func(ctx context.Context) error { return h.store.AddMute(ctx, cmd.Nick) })
	h.broadcastAll("User " + cmd.Nick + " has been muted by an admin.")
	h.log.Info().Str("admin", s.Nickname).Str("target", cmd.Nick).Msg("user muted")
}

func (h *Hub) handleUnmute(s *Session, cmd Command) {
	if !s.IsAdmin {
		h.sendError(s, coreError(ErrCodeNotAdmin, "You are not an admin."))
		return
	}
	if !h.moderation.unmute(cmd.Nick) {
		h.sendError(s, coreError(ErrCodeNotMuted, "User \""+cmd.Nick+"\" is not muted."))
		return
	}
	h.persist("remove mute", cmd.Nick, func(ctx context.Context) error { return h.store.RemoveMute(ctx, cmd.Nick) })
	h.broadcastAll("User " + cmd.Nick + " has been unmuted.")
	h.log.Info().Str("admin", s.Nickname).Str("target", cmd.Nick).Msg("user unmuted")
}

func (h *Hub) handleWhoAmI(s *Session) {
	h.send(s, "Nickname: "+s.Nickname)
	h.send(s, "Session: "+s.ID)
	h.send(s, "Remote address: "+s.Conn.RemoteAddr())
	h.send(s, "Connected since: "+s.ConnectedAt.Format(time.RFC3339))
}

func (h *Hub) handleQuit(s *Session) {
	h.teardown(s, "has quit")
	s.Conn.Close()
}

// teardown is the single cleanup path shared by QUIT, KICK, BAN and
// transport disconnects: leave every joined room with a notice, collect
// emptied rooms, release the nickname. Mutes and bans are untouched.
func (h *Hub) teardown(s *Session, notice string) {
	if s.released {
		return
	}
	s.released = true

	if s.Nickname != "" {
		for name := range s.rooms {
			room := h.rooms.get(name)
			delete(s.rooms, name)
			if room == nil {
				continue
			}
			room.remove(s.Nickname)
			h.broadcastRoom(s.Nickname+" "+notice, name, nil)
			h.rooms.removeIfEmpty(name)
		}
		h.registry.release(s.Nickname)
	}
	delete(h.sessions, s)
	h.log.Debug().Str("session", s.ID).Str("nick", s.Nickname).Str("notice", notice).Msg("session torn down")
}

// persist records a moderation change, best-effort. Store failures are
// logged and never surfaced to users.
func (h *Hub) persist(action, nick string, fn func(context.Context) error) {
	if h.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		h.log.Warn().Err(err).Str("action", action).Str("nick", nick).Msg("moderation persistence failed")
	}
}
