package protocol

// EventType identifies the kind of DOM event.
type EventType uint8

const (
	EventClick  EventType = 0x01
	EventInput  EventType = 0x02
	EventSubmit EventType = 0x03
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	switch et {
	case EventClick:
		return "click"
	case EventInput:
		return "input"
	case EventSubmit:
		return "submit"
	default:
		return "unknown"
	}
}

// HandlerKey returns the handler suffix used in hydration handler maps.
func (et EventType) HandlerKey() string {
	return "on" + et.String()
}

// Event is a client → server DOM event addressed by hydration ID.
type Event struct {
	Seq  uint64
	Type EventType
	HID  string

	// Value carries the input value for EventInput.
	Value string
}

// EncodeEvent encodes an event into a complete frame.
func EncodeEvent(ev *Event) ([]byte, error) {
	e := NewEncoder()
	e.WriteUvarint(ev.Seq)
	e.WriteByte(byte(ev.Type))
	e.WriteString(ev.HID)
	e.WriteString(ev.Value)
	return NewFrame(FrameEvent, e.Bytes()).Encode()
}

// DecodeEvent decodes an event from an event frame payload.
// A missing trailing value is accepted for older clients.
func DecodeEvent(payload []byte) (*Event, error) {
	d := NewDecoder(payload)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	et, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	hid, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	ev := &Event{Seq: seq, Type: EventType(et), HID: hid}
	if d.Remaining() > 0 {
		if ev.Value, err = d.ReadString(); err != nil {
			return nil, err
		}
	}
	return ev, nil
}
