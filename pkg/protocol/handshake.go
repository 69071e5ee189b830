package protocol

import "errors"

// ProtocolVersion is the wire protocol version spoken by this server.
const ProtocolVersion uint16 = 1

// HandshakeStatus represents the result of a handshake.
type HandshakeStatus uint8

const (
	HandshakeOK              HandshakeStatus = 0x00
	HandshakeVersionMismatch HandshakeStatus = 0x01
	HandshakeServerBusy      HandshakeStatus = 0x02
	HandshakeSessionExpired  HandshakeStatus = 0x03
	HandshakeInvalidFormat   HandshakeStatus = 0x04
)

// String returns the string representation of the handshake status.
func (hs HandshakeStatus) String() string {
	switch hs {
	case HandshakeOK:
		return "OK"
	case HandshakeVersionMismatch:
		return "VersionMismatch"
	case HandshakeServerBusy:
		return "ServerBusy"
	case HandshakeSessionExpired:
		return "SessionExpired"
	case HandshakeInvalidFormat:
		return "InvalidFormat"
	default:
		return "Unknown"
	}
}

// ErrNotHandshake is returned when a handshake frame was expected.
var ErrNotHandshake = errors.New("protocol: expected handshake frame")

// ClientHello is the first message from client to server.
// An empty SessionID starts a fresh session.
type ClientHello struct {
	Version   uint16
	SessionID string
}

// ServerHello is the server's response to ClientHello.
type ServerHello struct {
	Status     HandshakeStatus
	SessionID  string
	ServerTime uint64 // Unix milliseconds
}

// EncodeClientHello encodes a ClientHello into a complete frame.
func EncodeClientHello(ch *ClientHello) ([]byte, error) {
	e := NewEncoder()
	e.WriteUint16(ch.Version)
	e.WriteString(ch.SessionID)
	return NewFrame(FrameHandshake, e.Bytes()).Encode()
}

// DecodeClientHello decodes a ClientHello from a handshake frame payload.
func DecodeClientHello(payload []byte) (*ClientHello, error) {
	d := NewDecoder(payload)
	version, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	sessionID, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &ClientHello{Version: version, SessionID: sessionID}, nil
}

// EncodeServerHello encodes a ServerHello into a complete frame.
func EncodeServerHello(sh *ServerHello) ([]byte, error) {
	e := NewEncoder()
	e.WriteByte(byte(sh.Status))
	e.WriteString(sh.SessionID)
	e.WriteUint64(sh.ServerTime)
	return NewFrame(FrameHandshake, e.Bytes()).Encode()
}

// DecodeServerHello decodes a ServerHello from a handshake frame payload.
func DecodeServerHello(payload []byte) (*ServerHello, error) {
	d := NewDecoder(payload)
	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	sessionID, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	serverTime, err := d.ReadUint64()
	if err != nil {
		return nil, err
	}
	return &ServerHello{
		Status:     HandshakeStatus(status),
		SessionID:  sessionID,
		ServerTime: serverTime,
	}, nil
}
