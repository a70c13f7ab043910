package errors

import "fmt"

// Wire errors carry the exact message emitted to clients inside the
// error{message} envelope, so their text is part of the protocol.
var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrUserIDRequired  = fmt.Errorf("User ID is required")
	ErrNotAuthed       = fmt.Errorf("User not authenticated")
	ErrAlreadyInCall   = fmt.Errorf("Already in a call")
	ErrUserNotFound    = fmt.Errorf("User not found")
	ErrUserUnavailable = fmt.Errorf("User is not available")
	ErrCallExpired     = fmt.Errorf("Call not found or expired")
	ErrCallNotFound    = fmt.Errorf("Call not found")
	ErrPeerNotFound    = fmt.Errorf("Receiver not found")
	ErrUnauthorized    = fmt.Errorf("Unauthorized")

	ErrUnknownEvent     = fmt.Errorf("unknown event")
	ErrMalformedPayload = fmt.Errorf("malformed payload")
	ErrSinkClosed       = fmt.Errorf("connection closed")
	ErrSinkFull         = fmt.Errorf("connection buffer full")
)
