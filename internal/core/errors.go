package core

import "errors"

// Error codes for the command protocol. Every error is recovered locally
// and surfaced as a reply line to the originating session; none are
// fatal to the connection except where KICK/BAN close it explicitly.
const (
	ErrCodeAuthRequired      = "auth_required"
	ErrCodeUsernameTaken     = "username_taken"
	ErrCodeUsernameImmutable = "username_immutable"
	ErrCodeEmptyUsername     = "empty_username"
	ErrCodeWrongPassword     = "wrong_password"
	ErrCodeRoomNotFound      = "room_not_found"
	ErrCodeRoomExists        = "room_exists"
	ErrCodeWrongRoomPassword = "wrong_room_password"
	ErrCodeRoomFull          = "room_full"
	ErrCodeTooManyRooms      = "too_many_rooms"
	ErrCodeNotRoomMember     = "not_room_member"
	ErrCodeRecipientNotFound = "recipient_not_found"
	ErrCodeNotAdmin          = "not_admin"
	ErrCodeNotBanned         = "not_banned"
	ErrCodeNotMuted          = "not_muted"
	ErrCodeBanned            = "banned"
	ErrCodeMuted             = "muted"
	ErrCodeMessageTooLong    = "message_too_long"
	ErrCodeMalformed         = "malformed_command"
)

var (
	ErrRoomExists    = errors.New("room already exists")
	ErrNicknameTaken = errors.New("nickname already taken")
)

// CoreError wraps a code and human-readable message. The message is what
// goes back over the wire; the code is for logs and tests.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
