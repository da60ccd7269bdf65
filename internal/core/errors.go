package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeNotRegistered = "not_registered"
	ErrCodeNameTaken     = "name_taken"
	ErrCodeUserNotFound  = "user_not_found"
	ErrCodeNotInRoom     = "not_in_room"
	ErrCodeMailboxFull   = "mailbox_full"
	ErrCodeMailboxClosed = "mailbox_closed"
)

var (
	// ErrNotRegistered is returned when an operation targets a participant
	// that is not a registry member.
	ErrNotRegistered = coreError(ErrCodeNotRegistered, "participant is not registered")
	ErrNameTaken     = coreError(ErrCodeNameTaken, "name already taken")
	ErrUserNotFound  = coreError(ErrCodeUserNotFound, "user not found")
	ErrNotInRoom     = coreError(ErrCodeNotInRoom, "not in room")
	ErrMailboxFull   = coreError(ErrCodeMailboxFull, "mailbox is full")
	ErrMailboxClosed = coreError(ErrCodeMailboxClosed, "mailbox is closed")
)

// CoreError wraps a code and human-readable message.
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

// Code extracts the domain error code from err, or "" if err carries none.
func Code(err error) string {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
