package core

import "sort"

// Room groups nicknames subscribed to the same channel. An optional
// password gates joining; an optional topic is shown to members.
type Room struct {
	Name     string
	Password string
	Topic    string
	members  map[string]struct{}
}

func newRoom(name, password string) *Room {
	return &Room{
		Name:     name,
		Password: password,
		members:  make(map[string]struct{}),
	}
}

func (r *Room) add(nick string) {
	r.members[nick] = struct{}{}
}

// remove deletes a nickname from the room. Returns true if it was a member.
func (r *Room) remove(nick string) bool {
	if _, ok := r.members[nick]; !ok {
		return false
	}
	delete(r.members, nick)
	return true
}

func (r *Room) has(nick string) bool {
	_, ok := r.members[nick]
	return ok
}

func (r *Room) size() int {
	return len(r.members)
}

func (r *Room) empty() bool {
	return len(r.members) == 0
}

// Members returns the member nicknames in stable order.
func (r *Room) Members() []string {
	out := make([]string, 0, len(r.members))
	for nick := range r.members {
		out = append(out, nick)
	}
	sort.Strings(out)
	return out
}

// directory maps room names to rooms, preserving creation order for
// LIST. Rooms emptied by any removal are deleted synchronously, so a
// listed room (past its first join) always has at least one member.
type directory struct {
	rooms map[string]*Room
	order []string
}

func newDirectory() *directory {
	return &directory{rooms: make(map[string]*Room)}
}

func (d *directory) create(name, password string) (*Room, error) {
	if _, exists := d.rooms[name]; exists {
		return nil, ErrRoomExists
	}
	room := newRoom(name, password)
	d.rooms[name] = room
	d.order = append(d.order, name)
	return room, nil
}

func (d *directory) get(name string) *Room {
	return d.rooms[name]
}

// removeIfEmpty garbage-collects a room with no members. Returns true
// if the room was deleted.
func (d *directory) removeIfEmpty(name string) bool {
	room, ok := d.rooms[name]
	if !ok || !room.empty() {
		return false
	}
	delete(d.rooms, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// names returns room names in creation order.
func (d *directory) names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

func (d *directory) count() int {
	return len(d.rooms)
}
