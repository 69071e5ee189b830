package protocol

import (
	"errors"
	"fmt"
)

// Message decoding errors.
var (
	ErrUnknownPatchOp = errors.New("protocol: unknown patch op")
	ErrUnknownControl = errors.New("protocol: unknown control type")
)

// ErrorCode identifies the kind of error reported to the client.
type ErrorCode uint16

const (
	ErrUnknown         ErrorCode = 0x0000
	ErrInvalidFrame    ErrorCode = 0x0001
	ErrInvalidEvent    ErrorCode = 0x0002
	ErrHandlerNotFound ErrorCode = 0x0003
	ErrHandlerPanic    ErrorCode = 0x0004
	ErrSessionExpired  ErrorCode = 0x0005
	ErrRateLimited     ErrorCode = 0x0006
	ErrServerError     ErrorCode = 0x0100
	ErrNotAuthorized   ErrorCode = 0x0101
)

// String returns the string representation of the error code.
func (ec ErrorCode) String() string {
	switch ec {
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrInvalidEvent:
		return "InvalidEvent"
	case ErrHandlerNotFound:
		return "HandlerNotFound"
	case ErrHandlerPanic:
		return "HandlerPanic"
	case ErrSessionExpired:
		return "SessionExpired"
	case ErrRateLimited:
		return "RateLimited"
	case ErrServerError:
		return "ServerError"
	case ErrNotAuthorized:
		return "NotAuthorized"
	default:
		return "Unknown"
	}
}

// ErrorMessage is a server → client error report. Fatal errors are followed
// by the server closing the connection.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool
}

// NewError creates a non-fatal error message.
func NewError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message}
}

// NewFatalError creates a fatal error message.
func NewFatalError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message, Fatal: true}
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	return fmt.Sprintf("protocol error %s: %s", em.Code, em.Message)
}

// EncodeErrorMessage encodes an error message into a complete frame.
func EncodeErrorMessage(em *ErrorMessage) ([]byte, error) {
	e := NewEncoder()
	e.WriteUint16(uint16(em.Code))
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return NewFrame(FrameError, e.Bytes()).Encode()
}

// DecodeErrorMessage decodes an error message from an error frame payload.
func DecodeErrorMessage(payload []byte) (*ErrorMessage, error) {
	d := NewDecoder(payload)
	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: ErrorCode(code), Message: msg, Fatal: fatal}, nil
}
