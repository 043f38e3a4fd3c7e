package core

import "time"

// timestampLayout renders e.g. "10:30:45 AM".
const timestampLayout = "3:04:05 PM"

func stamped(body string) string {
	return "[" + time.Now().Format(timestampLayout) + "] " + body
}

// broadcastRoom delivers a timestamped line to every live member of the
// room except the sender. Delivery is independent per recipient: a
// failed or unwritable transport is logged and skipped, never aborting
// the rest. A muted sender gets an error reply and nothing is sent,
// even though message handlers check muting too.
func (h *Hub) broadcastRoom(body, roomName string, sender *Session) {
	if sender != nil && h.moderation.isMuted(sender.Nickname) {
		h.sendError(sender, coreError(ErrCodeMuted, "You are muted and cannot send messages."))
		return
	}
	if len(body) > h.limits.MaxMessageLength {
		h.log.Warn().Str("room", roomName).Int("length", len(body)).Msg("message over length limit")
		if sender != nil {
			h.sendError(sender, coreError(ErrCodeMessageTooLong, "Message too long."))
		}
		return
	}
	room := h.rooms.get(roomName)
	if room == nil {
		return
	}

	line := stamped(body)
	for nick := range room.members {
		member := h.registry.lookup(nick)
		if member == nil || member == sender || !member.Conn.IsOpen() {
			continue
		}
		if err := member.Conn.Send(line); err != nil {
			h.log.Warn().Err(err).Str("room", roomName).Str("nick", nick).Msg("broadcast delivery failed")
		}
	}
}

// broadcastAll delivers a timestamped notice to every authenticated
// session, used for server-wide moderation announcements.
func (h *Hub) broadcastAll(body string) {
	if len(body) > h.limits.MaxMessageLength {
		h.log.Warn().Int("length", len(body)).Msg("server notice over length limit")
		return
	}
	line := stamped(body)
	for s := range h.sessions {
		if s.Nickname == "" || !s.Conn.IsOpen() {
			continue
		}
		if err := s.Conn.Send(line); err != nil {
			h.log.Warn().Err(err).Str("nick", s.Nickname).Msg("notice delivery failed")
		}
	}
}

// send writes one reply line to a single session, best-effort.
func (h *Hub) send(s *Session, line string) {
	if !s.Conn.IsOpen() {
		return
	}
	if err := s.Conn.Send(line); err != nil {
		h.log.Debug().Err(err).Str("session", s.ID).Msg("reply delivery failed")
	}
}

func (h *Hub) sendError(s *Session, e *CoreError) {
	h.send(s, "ERROR: "+e.Message)
}
