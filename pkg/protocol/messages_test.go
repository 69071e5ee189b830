package protocol

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decodeTyped(t *testing.T, data []byte, want FrameType) []byte {
	t.Helper()
	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if f.Type != want {
		t.Fatalf("frame type = %v, want %v", f.Type, want)
	}
	return f.Payload
}

func TestHandshake(t *testing.T) {
	data, err := EncodeClientHello(&ClientHello{Version: ProtocolVersion, SessionID: "s-123"})
	if err != nil {
		t.Fatal(err)
	}
	ch, err := DecodeClientHello(decodeTyped(t, data, FrameHandshake))
	if err != nil {
		t.Fatal(err)
	}
	if ch.Version != ProtocolVersion || ch.SessionID != "s-123" {
		t.Errorf("ClientHello = %+v", ch)
	}

	sent := &ServerHello{Status: HandshakeSessionExpired, SessionID: "s-456", ServerTime: 1_700_000_000_000}
	data, err = EncodeServerHello(sent)
	if err != nil {
		t.Fatal(err)
	}
	sh, err := DecodeServerHello(decodeTyped(t, data, FrameHandshake))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sent, sh); diff != "" {
		t.Errorf("ServerHello mismatch (-want +got):\n%s", diff)
	}
	if sh.Status.String() != "SessionExpired" {
		t.Errorf("status string = %q", sh.Status.String())
	}
}

func TestEvent(t *testing.T) {
	data, err := EncodeEvent(&Event{Seq: 7, Type: EventClick, HID: "h1"})
	if err != nil {
		t.Fatal(err)
	}
	ev, err := DecodeEvent(decodeTyped(t, data, FrameEvent))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Seq != 7 || ev.Type != EventClick || ev.HID != "h1" {
		t.Errorf("Event = %+v", ev)
	}
	if ev.Type.HandlerKey() != "onclick" {
		t.Errorf("HandlerKey() = %q", ev.Type.HandlerKey())
	}

	// Payload without a trailing value.
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteByte(byte(EventClick))
	e.WriteString("h2")
	ev, err = DecodeEvent(e.Bytes())
	if err != nil || ev.HID != "h2" || ev.Value != "" {
		t.Errorf("short event = %+v, %v", ev, err)
	}
}

func TestPatches(t *testing.T) {
	sent := &PatchesFrame{
		Seq: 2,
		Patches: []Patch{
			{Op: PatchReplaceChildren, HID: "h0", HTML: "You liked this."},
			{Op: PatchSetText, HID: "h3", Value: "2 likes"},
			{Op: PatchSetAttr, HID: "h1", Key: "class", Value: "liked"},
			{Op: PatchRemoveAttr, HID: "h1", Key: "disabled"},
			{Op: PatchInsertNode, HID: "h0", Index: 1, HTML: "<span>x</span>"},
			{Op: PatchRemoveNode, HID: "h4"},
			{Op: PatchReplaceNode, HID: "h5", HTML: "<p>y</p>"},
		},
	}
	data, err := EncodePatches(sent)
	if err != nil {
		t.Fatal(err)
	}

	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatal(err)
	}
	if f.Flags&FlagSequenced == 0 {
		t.Error("patches frame should be flagged as sequenced")
	}
	got, err := DecodePatches(f.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sent, got); diff != "" {
		t.Errorf("PatchesFrame mismatch (-want +got):\n%s", diff)
	}

	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteUvarint(1)
	e.WriteByte(0x7E)
	e.WriteString("h1")
	if _, err := DecodePatches(e.Bytes()); !errors.Is(err, ErrUnknownPatchOp) {
		t.Errorf("unknown op error = %v", err)
	}
}

func TestControl(t *testing.T) {
	tests := []struct {
		name string
		msg  *Control
	}{
		{"ping", NewPing(1234)},
		{"pong", NewPong(1234)},
		{"close", NewClose(CloseServerShutdown, "bye")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeControl(tt.msg)
			if err != nil {
				t.Fatal(err)
			}
			got, err := DecodeControl(decodeTyped(t, data, FrameControl))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.msg, got); diff != "" {
				t.Errorf("Control mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := DecodeControl([]byte{0x55}); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("unknown control error = %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	sent := NewFatalError(ErrSessionExpired, "session expired")
	data, err := EncodeErrorMessage(sent)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeErrorMessage(decodeTyped(t, data, FrameError))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sent, got); diff != "" {
		t.Errorf("ErrorMessage mismatch (-want +got):\n%s", diff)
	}
	if got.Error() != "protocol error SessionExpired: session expired" {
		t.Errorf("Error() = %q", got.Error())
	}
}
