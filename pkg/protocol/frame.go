package protocol

import (
	"errors"
	"io"
)

const (
	// FrameHeaderSize is the fixed header length: type, flags, 16-bit length.
	FrameHeaderSize = 4

	// MaxPayloadSize is the largest payload a 16-bit length can describe.
	MaxPayloadSize = 1<<16 - 1
)

// FrameType identifies what a frame's payload holds.
type FrameType uint8

const (
	FrameHandshake FrameType = 0x00 // ClientHello / ServerHello
	FrameEvent     FrameType = 0x01 // client to server
	FramePatches   FrameType = 0x02 // server to client
	FrameControl   FrameType = 0x03 // ping, pong, close
	FrameError     FrameType = 0x05 // server error report
)

var frameTypeNames = map[FrameType]string{
	FrameHandshake: "Handshake",
	FrameEvent:     "Event",
	FramePatches:   "Patches",
	FrameControl:   "Control",
	FrameError:     "Error",
}

// Valid reports whether ft is a frame type this protocol version knows.
func (ft FrameType) Valid() bool {
	_, ok := frameTypeNames[ft]
	return ok
}

func (ft FrameType) String() string {
	if name, ok := frameTypeNames[ft]; ok {
		return name
	}
	return "Unknown"
}

// FrameFlags carry per-frame processing hints.
type FrameFlags uint8

// FlagSequenced marks a payload that starts with a sequence number.
const FlagSequenced FrameFlags = 1 << 1

var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is one WebSocket message.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame wraps payload in a frame of type ft with no flags set.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode returns the header followed by the payload.
func (f *Frame) Encode() ([]byte, error) {
	n := len(f.Payload)
	if n > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	out := make([]byte, 0, FrameHeaderSize+n)
	out = append(out, byte(f.Type), byte(f.Flags), byte(n>>8), byte(n))
	return append(out, f.Payload...), nil
}

// DecodeFrame parses a complete frame. Bytes past the declared payload
// length are ignored.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}
	ft := FrameType(data[0])
	if !ft.Valid() {
		return nil, ErrInvalidFrameType
	}
	n := int(data[2])<<8 | int(data[3])
	body := data[FrameHeaderSize:]
	if len(body) < n {
		return nil, io.ErrUnexpectedEOF
	}
	return &Frame{
		Type:    ft,
		Flags:   FrameFlags(data[1]),
		Payload: append([]byte(nil), body[:n]...),
	}, nil
}
