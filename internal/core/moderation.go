package core

// moderation is the mute list. A nickname may be muted whether or not it
// is connected, and mutes survive disconnects.
type moderation struct {
	muted map[string]struct{}
}

func newModeration() *moderation {
	return &moderation{muted: make(map[string]struct{})}
}

func (m *moderation) mute(nick string) {
	m.muted[nick] = struct{}{}
}

// unmute returns false if the nickname was not muted.
func (m *moderation) unmute(nick string) bool {
	if _, ok := m.muted[nick]; !ok {
		return false
	}
	delete(m.muted, nick)
	return true
}

func (m *moderation) isMuted(nick string) bool {
	_, ok := m.muted[nick]
	return ok
}
