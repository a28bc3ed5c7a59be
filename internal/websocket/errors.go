package websocket

import "errors"

// Connection-related errors
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrWriteTimeout     = errors.New("write timeout")
)

// Frame-related errors
var (
	ErrMalformedFrame   = errors.New("malformed event frame")
	ErrMissingEventName = errors.New("event frame has no event name")
)

// Registry-related errors
var (
	ErrNilConnection = errors.New("connection cannot be nil")
)
