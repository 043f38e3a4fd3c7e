package core

import (
	"strings"
	"testing"
)

func TestAdminPasswordChallenge(t *testing.T) {
	hub := newAdminTestHub(t)
	sess, conn := connect(t, hub)

	hub.Submit(sess, "NICK admin")
	mustLine(t, conn, "Enter password:")
	hub.Submit(sess, "securepass123")
	mustLine(t, conn, "Admin access granted. Your nickname is now admin")
}

func TestAdminWrongPasswordLeavesUnauthenticated(t *testing.T) {
	hub := newAdminTestHub(t)
	sess, conn := connect(t, hub)

	hub.Submit(sess, "NICK admin")
	mustLine(t, conn, "Enter password:")
	hub.Submit(sess, "guess1")
	mustLine(t, conn, "Incorrect password.")

	// Still unauthenticated; the attempt was consumed exactly once.
	hub.Submit(sess, "LIST")
	mustLine(t, conn, "You must set a nickname first")

	// Retry is permitted by issuing NICK again.
	hub.Submit(sess, "NICK admin")
	mustLine(t, conn, "Enter password:")
	hub.Submit(sess, "securepass123")
	mustLine(t, conn, "Admin access granted")
}

func TestAdminChallengeRaceKeepsNicknameUnique(t *testing.T) {
	hub := newAdminTestHub(t)
	first, firstConn := connect(t, hub)
	second, secondConn := connect(t, hub)

	hub.Submit(first, "NICK admin")
	mustLine(t, firstConn, "Enter password:")
	hub.Submit(second, "NICK admin")
	mustLine(t, secondConn, "Enter password:")

	hub.Submit(first, "securepass123")
	mustLine(t, firstConn, "Admin access granted")
	hub.Submit(second, "securepass123")
	mustLine(t, secondConn, `Username "admin" is already taken.`)
}

func TestModerationRequiresAdmin(t *testing.T) {
	hub := newTestHub(t)
	sess, conn := login(t, hub, "alice")
	login(t, hub, "bob")

	hub.Submit(sess, "KICK bob")
	mustLine(t, conn, "You are not an admin.")
	hub.Submit(sess, "BAN bob")
	mustLine(t, conn, "You are not an admin.")
	hub.Submit(sess, "MUTE bob")
	mustLine(t, conn, "You are not an admin.")
	hub.Submit(sess, "UNMUTE bob")
	mustLine(t, conn, "You are not an admin.")
	hub.Submit(sess, "UNBAN bob")
	mustLine(t, conn, "Only admins can unban users.")
	hub.Submit(sess, "TOPIC room1 hi")
	mustLine(t, conn, "Only admins can set topics.")
}

func TestKickDisconnectsWithoutBanning(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, adminConn := loginAdmin(t, hub)
	_, bobConn := login(t, hub, "bob")

	hub.Submit(admin, "KICK bob spamming the lobby")
	mustLine(t, bobConn, "You have been kicked by an admin. Reason: spamming the lobby")
	waitClosed(t, bobConn)
	mustLine(t, adminConn, "User bob was kicked by an admin.")

	// Not banned: bob can come straight back.
	bob2, bob2Conn := login(t, hub, "bob")
	hub.Submit(bob2, "CREATE room1")
	mustLine(t, bob2Conn, "created")
	hub.Submit(bob2, "JOIN room1")
	mustLine(t, bob2Conn, "You joined room1")
}

func TestKickDefaultReason(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, _ := loginAdmin(t, hub)
	_, bobConn := login(t, hub, "bob")

	hub.Submit(admin, "KICK bob")
	mustLine(t, bobConn, "Reason: No reason specified")
}

func TestKickUnknownUser(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, adminConn := loginAdmin(t, hub)

	hub.Submit(admin, "KICK ghost")
	mustLine(t, adminConn, `User "ghost" not found.`)
}

func TestBanDisconnectsAndPersistsAcrossReconnect(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, adminConn := loginAdmin(t, hub)
	bob, bobConn := login(t, hub, "bob")

	hub.Submit(bob, "CREATE room1")
	mustLine(t, bobConn, "created")
	hub.Submit(bob, "JOIN room1")
	mustLine(t, bobConn, "You joined room1")

	hub.Submit(admin, "BAN bob")
	waitClosed(t, bobConn)
	mustLine(t, adminConn, "User bob has been banned by an admin.")

	// Reconnecting and re-claiming the nickname works, but the first
	// join attempt is rejected and the connection closed.
	bob2, bob2Conn := login(t, hub, "bob")
	hub.Submit(bob2, "CREATE room2")
	mustLine(t, bob2Conn, "created")
	hub.Submit(bob2, "JOIN room2")
	mustLine(t, bob2Conn, "You are banned from this server.")
	waitClosed(t, bob2Conn)
}

func TestBanRequiresConnectedTarget(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, adminConn := loginAdmin(t, hub)

	hub.Submit(admin, "BAN offline")
	mustLine(t, adminConn, `User "offline" not found.`)
}

func TestUnban(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, adminConn := loginAdmin(t, hub)
	_, bobConn := login(t, hub, "bob")

	hub.Submit(admin, "BAN bob")
	waitClosed(t, bobConn)

	hub.Submit(admin, "UNBAN bob")
	mustLine(t, adminConn, `User "bob" has been unbanned.`)

	bob2, bob2Conn := login(t, hub, "bob")
	hub.Submit(bob2, "CREATE room1")
	mustLine(t, bob2Conn, "created")
	hub.Submit(bob2, "JOIN room1")
	mustLine(t, bob2Conn, "You joined room1")

	hub.Submit(admin, "UNBAN bob")
	mustLine(t, adminConn, `User "bob" is not banned.`)
}

func TestMuteBlocksRoomMessages(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, _ := loginAdmin(t, hub)
	alice, aliceConn := login(t, hub, "alice")

	hub.Submit(alice, "CREATE room1")
	mustLine(t, aliceConn, "created")
	hub.Submit(alice, "JOIN room1")
	mustLine(t, aliceConn, "You joined room1")

	hub.Submit(admin, "MUTE alice")
	mustLine(t, aliceConn, "alice has been muted")

	hub.Submit(alice, "MSG room1 hello")
	mustLine(t, aliceConn, "You are muted and cannot send messages.")
}

func TestMuteOfflineNicknameApplies(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, adminConn := loginAdmin(t, hub)

	// Muting is independent of liveness.
	hub.Submit(admin, "MUTE carol")
	mustLine(t, adminConn, "carol has been muted")

	carol, carolConn := login(t, hub, "carol")
	hub.Submit(carol, "CREATE room1")
	mustLine(t, carolConn, "created")
	hub.Submit(carol, "JOIN room1")
	mustLine(t, carolConn, "You joined room1")
	hub.Submit(carol, "MSG room1 hi")
	mustLine(t, carolConn, "You are muted and cannot send messages.")
}

func TestMuteIdempotenceAndUnmute(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, adminConn := loginAdmin(t, hub)
	alice, aliceConn := login(t, hub, "alice")

	hub.Submit(alice, "CREATE room1")
	mustLine(t, aliceConn, "created")
	hub.Submit(alice, "JOIN room1")
	mustLine(t, aliceConn, "You joined room1")

	hub.Submit(admin, "MUTE alice")
	mustLine(t, adminConn, "alice has been muted")
	hub.Submit(admin, "MUTE alice")
	mustLine(t, adminConn, "alice has been muted")

	// Still muted after the double mute.
	hub.Submit(alice, "MSG room1 hi")
	mustLine(t, aliceConn, "You are muted")

	hub.Submit(admin, "UNMUTE alice")
	mustLine(t, adminConn, "alice has been unmuted")
	hub.Submit(admin, "UNMUTE alice")
	mustLine(t, adminConn, `User "alice" is not muted.`)
}

func TestMutePersistsPastDisconnect(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, adminConn := loginAdmin(t, hub)
	alice, aliceConn := login(t, hub, "alice")

	hub.Submit(admin, "MUTE alice")
	mustLine(t, adminConn, "alice has been muted")

	hub.Submit(alice, "QUIT")
	waitClosed(t, aliceConn)

	alice2, alice2Conn := login(t, hub, "alice")
	hub.Submit(alice2, "CREATE room1")
	mustLine(t, alice2Conn, "created")
	hub.Submit(alice2, "JOIN room1")
	mustLine(t, alice2Conn, "You joined room1")
	hub.Submit(alice2, "MSG room1 back again")
	mustLine(t, alice2Conn, "You are muted")
}

func TestTopicBroadcastsToRoom(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, adminConn := loginAdmin(t, hub)
	alice, aliceConn := login(t, hub, "alice")

	hub.Submit(alice, "CREATE room1")
	mustLine(t, aliceConn, "created")
	hub.Submit(alice, "JOIN room1")
	mustLine(t, aliceConn, "You joined room1")

	hub.Submit(admin, "TOPIC room1 welcome to the lobby")
	mustLine(t, aliceConn, "Topic for room1 changed to: welcome to the lobby")

	hub.Submit(admin, "TOPIC ghost hi")
	mustLine(t, adminConn, `Room "ghost" does not exist.`)
}

func TestModerationNoticeIsTimestamped(t *testing.T) {
	hub := newAdminTestHub(t)
	admin, adminConn := loginAdmin(t, hub)

	hub.Submit(admin, "MUTE carol")
	line := mustLine(t, adminConn, "carol has been muted")
	if !strings.HasPrefix(line, "[") || !strings.Contains(line, "M] ") {
		t.Fatalf("expected timestamp prefix, got %q", line)
	}
}
