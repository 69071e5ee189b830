package server

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sputnik-dev/sputnik/app/components"
	"github.com/sputnik-dev/sputnik/app/pages"
	"github.com/sputnik-dev/sputnik/pkg/protocol"
	"github.com/sputnik-dev/sputnik/pkg/vdom"
)

func testConfig() *ServerConfig {
	cfg := DefaultServerConfig()
	cfg.Title = "Test"
	cfg.HeartbeatInterval = time.Hour
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func likeButtonFactory(string) Widget {
	return components.NewLikeButton()
}

func homePage(mountID string) PageFunc {
	return func() *vdom.VNode { return pages.Home("Test", mountID) }
}

type testEnv struct {
	srv *Server
	ts  *httptest.Server
	reg *prometheus.Registry
}

func startServer(t *testing.T, cfg *ServerConfig, factory WidgetFactory, opts ...Option) *testEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	opts = append(opts, WithRegistry(reg))
	srv := New(cfg, homePage(cfg.MountID), factory, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = srv.sessions.Shutdown(context.Background()) })
	return &testEnv{srv: srv, ts: ts, reg: reg}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + DefaultWebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// connect dials and completes the handshake, returning the server hello and
// the initial full sync.
func (e *testEnv) connect(t *testing.T, sessionID string) (*websocket.Conn, *protocol.ServerHello, *protocol.PatchesFrame) {
	t.Helper()
	conn := e.dial(t)
	hello := sendHello(t, conn, protocol.ProtocolVersion, sessionID)
	if hello.Status != protocol.HandshakeOK {
		t.Fatalf("handshake status = %s", hello.Status)
	}
	return conn, hello, readPatches(t, conn)
}

func sendHello(t *testing.T, conn *websocket.Conn, version uint16, sessionID string) *protocol.ServerHello {
	t.Helper()
	data, err := protocol.EncodeClientHello(&protocol.ClientHello{Version: version, SessionID: sessionID})
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatal(err)
	}
	f := readFrame(t, conn)
	if f.Type != protocol.FrameHandshake {
		t.Fatalf("expected handshake frame, got %s", f.Type)
	}
	hello, err := protocol.DecodeServerHello(f.Payload)
	if err != nil {
		t.Fatal(err)
	}
	return hello
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	f, err := protocol.DecodeFrame(msg)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return f
}

func readPatches(t *testing.T, conn *websocket.Conn) *protocol.PatchesFrame {
	t.Helper()
	f := readFrame(t, conn)
	if f.Type != protocol.FramePatches {
		if f.Type == protocol.FrameError {
			em, _ := protocol.DecodeErrorMessage(f.Payload)
			t.Fatalf("expected patches, got error frame %v", em)
		}
		t.Fatalf("expected patches frame, got %s", f.Type)
	}
	pf, err := protocol.DecodePatches(f.Payload)
	if err != nil {
		t.Fatal(err)
	}
	return pf
}

func click(t *testing.T, conn *websocket.Conn, seq uint64, hid string) {
	t.Helper()
	data, err := protocol.EncodeEvent(&protocol.Event{Seq: seq, Type: protocol.EventClick, HID: hid})
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatal(err)
	}
}

// expectPong pings the server and requires the next frame to be the pong.
// Anything the server sent before it, such as an error frame, fails the test.
func expectPong(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	data, err := protocol.EncodeControl(protocol.NewPing(42))
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatal(err)
	}
	f := readFrame(t, conn)
	if f.Type != protocol.FrameControl {
		t.Fatalf("expected pong, got %s frame", f.Type)
	}
	c, err := protocol.DecodeControl(f.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if c.Type != protocol.ControlPong || c.Timestamp != 42 {
		t.Fatalf("expected pong(42), got %+v", c)
	}
}

// counterValue sums every sample of the named counter.
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
