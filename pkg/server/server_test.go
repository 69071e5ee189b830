package server

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	serrors "github.com/sputnik-dev/sputnik/internal/errors"
	"github.com/sputnik-dev/sputnik/pkg/protocol"
	"github.com/sputnik-dev/sputnik/pkg/vtest"
)

func TestRenderPage(t *testing.T) {
	srv := New(testConfig(), homePage("login"), likeButtonFactory)

	var buf bytes.Buffer
	if err := srv.RenderPage(&buf); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	html := buf.String()

	vtest.ExpectContains(t, html, `<div aria-live="polite" id="login" data-hid="h0"><button data-hid="h1">Like</button></div>`)
	vtest.ExpectContains(t, html, `<title>Test</title>`)
	vtest.ExpectContains(t, html, `<meta content="/_sputnik/ws" name="sputnik-ws">`)
	vtest.ExpectContains(t, html, `<script defer src="/_sputnik/client.js"></script>`)
	vtest.ExpectNotContains(t, html, "You liked this.")
}

func TestRenderPageMissingMount(t *testing.T) {
	cfg := testConfig()
	cfg.MountID = "signup"
	srv := New(cfg, homePage("login"), likeButtonFactory)

	err := srv.RenderPage(io.Discard)
	if err == nil {
		t.Fatal("RenderPage() should fail without a mount point")
	}
	if !stderrors.Is(err, serrors.New("E201")) {
		t.Errorf("error = %v, want E201", err)
	}
	if !strings.Contains(err.Error(), `"#signup"`) {
		t.Errorf("error should name the selector: %v", err)
	}
}

func TestHTTPRoutes(t *testing.T) {
	env := startServer(t, testConfig(), likeButtonFactory)

	tests := []struct {
		name        string
		path        string
		header      map[string]string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{name: "page", path: "/", wantStatus: http.StatusOK, wantType: "text/html", wantContain: `id="login"`},
		{name: "client", path: DefaultClientPath, wantStatus: http.StatusOK, wantType: "application/javascript", wantContain: "sputnik"},
		{name: "client not modified", path: DefaultClientPath, header: map[string]string{"If-None-Match": clientETag}, wantStatus: http.StatusNotModified},
		{name: "healthz", path: "/healthz", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"status":"ok"`},
		{name: "metrics", path: "/metrics", wantStatus: http.StatusOK, wantContain: "sputnik_server_active_sessions"},
		{name: "not found", path: "/missing", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, env.ts.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantType != "" && !strings.HasPrefix(resp.Header.Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", resp.Header.Get("Content-Type"), tt.wantType)
			}
			if tt.wantContain != "" && !strings.Contains(string(body), tt.wantContain) {
				t.Errorf("body does not contain %q", tt.wantContain)
			}
		})
	}
}

type countFunc func(ctx context.Context, widget string) (int64, error)

func (f countFunc) Count(ctx context.Context, widget string) (int64, error) { return f(ctx, widget) }

func TestLikesRoute(t *testing.T) {
	tests := []struct {
		name       string
		counter    LikeCounter
		wantStatus int
		wantBody   string
	}{
		{
			name: "count",
			counter: countFunc(func(_ context.Context, widget string) (int64, error) {
				if widget != DefaultMountID {
					return 0, fmt.Errorf("unexpected widget %q", widget)
				}
				return 3, nil
			}),
			wantStatus: http.StatusOK,
			wantBody:   `{"widget":"login","count":3}`,
		},
		{
			name: "backend down",
			counter: countFunc(func(context.Context, string) (int64, error) {
				return 0, stderrors.New("connection refused")
			}),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error":"like count unavailable"}`,
		},
		{name: "no counter", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.counter != nil {
				opts = append(opts, WithLikeCounter(tt.counter))
			}
			env := startServer(t, testConfig(), likeButtonFactory, opts...)

			resp, err := http.Get(env.ts.URL + DefaultLikesPath)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantBody != "" && strings.TrimSpace(string(body)) != tt.wantBody {
				t.Errorf("body = %s, want %s", body, tt.wantBody)
			}
		})
	}
}

func TestPageMissingMountIs500(t *testing.T) {
	cfg := testConfig()
	cfg.MountID = "nowhere"
	env := startServer(t, cfg, likeButtonFactory)
	// startServer builds the page for cfg.MountID; swap in one without it.
	env.srv.page = homePage("login")

	resp, err := http.Get(env.ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestCheckOrigin(t *testing.T) {
	srv := New(testConfig(), homePage("login"), likeButtonFactory)

	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "http://example.com", want: true},
		{origin: "https://example.com", want: true},
		{origin: "https://evil.test", want: false},
	}
	for _, tt := range tests {
		r, _ := http.NewRequest(http.MethodGet, "http://example.com/_sputnik/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := srv.checkOrigin(r); got != tt.want {
			t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestServerConfigDefaults(t *testing.T) {
	cfg := (&ServerConfig{Address: ":9000"}).withDefaults()

	if cfg.Address != ":9000" {
		t.Errorf("Address = %q", cfg.Address)
	}
	if cfg.MountID != DefaultMountID || cfg.WebSocketPath != DefaultWebSocketPath {
		t.Errorf("MountID/WebSocketPath = %q/%q", cfg.MountID, cfg.WebSocketPath)
	}
	if cfg.Logger == nil || cfg.MaxEventQueue <= 0 || cfg.ReadTimeout <= 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if want := int64(protocol.FrameHeaderSize + protocol.MaxPayloadSize); cfg.MaxMessageSize != want {
		t.Errorf("MaxMessageSize = %d, want %d", cfg.MaxMessageSize, want)
	}
}

func TestErrorTypes(t *testing.T) {
	sessErr := &SessionError{SessionID: "s1", Op: "write", Err: ErrSessionClosed}
	if !stderrors.Is(sessErr, ErrSessionClosed) {
		t.Error("SessionError should unwrap")
	}
	if sessErr.Error() != "session s1: write: server: session closed" {
		t.Errorf("SessionError.Error() = %q", sessErr.Error())
	}

	herr := &HandlerError{SessionID: "s1", HID: "h1", EventType: "click", Panic: "boom"}
	if !strings.Contains(herr.Error(), "handler panic") || !strings.Contains(herr.Error(), "boom") {
		t.Errorf("HandlerError.Error() = %q", herr.Error())
	}

	perr := &ProtocolError{Op: "handshake", Err: ErrHandshakeFailed}
	if !stderrors.Is(perr, ErrHandshakeFailed) {
		t.Error("ProtocolError should unwrap")
	}
}
