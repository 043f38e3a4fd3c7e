package core

// registry tracks which nicknames are bound to live sessions and which
// are banned. Bans are independent of liveness and outlive disconnects.
// Only the hub goroutine touches it.
type registry struct {
	active map[string]*Session
	banned map[string]struct{}
}

func newRegistry() *registry {
	return &registry{
		active: make(map[string]*Session),
		banned: make(map[string]struct{}),
	}
}

// claim binds a nickname to a session. Fails if the nickname is already
// bound to a live session.
func (r *registry) claim(nick string, s *Session) error {
	if _, taken := r.active[nick]; taken {
		return ErrNicknameTaken
	}
	r.active[nick] = s
	return nil
}

// release frees a nickname. Idempotent.
func (r *registry) release(nick string) {
	delete(r.active, nick)
}

// lookup resolves a nickname to its live session, or nil.
func (r *registry) lookup(nick string) *Session {
	return r.active[nick]
}

func (r *registry) ban(nick string) {
	r.banned[nick] = struct{}{}
}

// unban lifts a ban. Returns false if the nickname was not banned.
func (r *registry) unban(nick string) bool {
	if _, ok := r.banned[nick]; !ok {
		return false
	}
	delete(r.banned, nick)
	return true
}

func (r *registry) isBanned(nick string) bool {
	_, ok := r.banned[nick]
	return ok
}
