package server

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrSessionClosed is returned when operating on a closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrEventQueueFull is returned when a session's event queue is full.
	ErrEventQueueFull = errors.New("server: event queue full")

	// ErrServerBusy is returned when the session limit is reached.
	ErrServerBusy = errors.New("server: too many sessions")

	// ErrHandshakeFailed is returned when the client hello is invalid.
	ErrHandshakeFailed = errors.New("server: handshake failed")
)

// SessionError wraps an error with session context.
type SessionError struct {
	SessionID string
	Op        string
	Err       error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// HandlerError is a panic or failure inside an event handler.
type HandlerError struct {
	SessionID string
	HID       string
	EventType string
	Panic     any
	Stack     []byte
	Err       error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("handler panic in session %s (hid=%s, event=%s): %v",
			e.SessionID, e.HID, e.EventType, e.Panic)
	}
	return fmt.Sprintf("handler error in session %s (hid=%s, event=%s): %v",
		e.SessionID, e.HID, e.EventType, e.Err)
}

// Unwrap returns the underlying error, if any.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// ProtocolError is a malformed or unexpected frame.
type ProtocolError struct {
	SessionID string
	Op        string
	Err       error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("protocol error in %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("protocol error in session %s (%s): %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}
