package protocol

// ControlType identifies a control message.
type ControlType uint8

const (
	ControlPing  ControlType = 0x01
	ControlPong  ControlType = 0x02
	ControlClose ControlType = 0x10
)

// CloseReason is sent with ControlClose.
type CloseReason uint8

const (
	CloseNormal         CloseReason = 0x00
	CloseGoingAway      CloseReason = 0x01
	CloseSessionExpired CloseReason = 0x02
	CloseServerShutdown CloseReason = 0x03
	CloseError          CloseReason = 0x04
)

// Control is a heartbeat or close message. Timestamp is Unix milliseconds
// and is echoed back in a pong.
type Control struct {
	Type      ControlType
	Timestamp uint64
	Reason    CloseReason
	Message   string
}

// NewPing creates a ping control message.
func NewPing(timestamp uint64) *Control {
	return &Control{Type: ControlPing, Timestamp: timestamp}
}

// NewPong creates a pong answering a ping with the given timestamp.
func NewPong(timestamp uint64) *Control {
	return &Control{Type: ControlPong, Timestamp: timestamp}
}

// NewClose creates a close control message.
func NewClose(reason CloseReason, message string) *Control {
	return &Control{Type: ControlClose, Reason: reason, Message: message}
}

// EncodeControl encodes a control message into a complete frame.
func EncodeControl(c *Control) ([]byte, error) {
	e := NewEncoder()
	e.WriteByte(byte(c.Type))
	switch c.Type {
	case ControlPing, ControlPong:
		e.WriteUint64(c.Timestamp)
	case ControlClose:
		e.WriteByte(byte(c.Reason))
		e.WriteString(c.Message)
	}
	return NewFrame(FrameControl, e.Bytes()).Encode()
}

// DecodeControl decodes a control message from a control frame payload.
func DecodeControl(payload []byte) (*Control, error) {
	d := NewDecoder(payload)
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	c := &Control{Type: ControlType(t)}

	switch c.Type {
	case ControlPing, ControlPong:
		c.Timestamp, err = d.ReadUint64()
	case ControlClose:
		var reason byte
		if reason, err = d.ReadByte(); err == nil {
			c.Reason = CloseReason(reason)
			c.Message, err = d.ReadString()
		}
	default:
		err = ErrUnknownControl
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
