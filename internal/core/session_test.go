package core

import "testing"

func TestSessionAuthStates(t *testing.T) {
	s := NewSession("s1", newFakeConn())

	if got := s.State(); got != AuthNone {
		t.Fatalf("fresh session state = %v, want AuthNone", got)
	}

	s.pendingAdmin = "admin"
	if got := s.State(); got != AuthAwaitingPassword {
		t.Fatalf("pending session state = %v, want AuthAwaitingPassword", got)
	}

	s.pendingAdmin = ""
	s.Nickname = "admin"
	if got := s.State(); got != AuthDone {
		t.Fatalf("bound session state = %v, want AuthDone", got)
	}
}

func TestSessionRoomTracking(t *testing.T) {
	s := NewSession("s1", newFakeConn())

	if s.InRoom("room1") || s.RoomCount() != 0 {
		t.Fatal("fresh session should have no rooms")
	}
	s.rooms["room1"] = struct{}{}
	s.rooms["room2"] = struct{}{}
	if !s.InRoom("room1") || s.RoomCount() != 2 {
		t.Fatalf("InRoom/RoomCount inconsistent: %v", s.rooms)
	}
}
