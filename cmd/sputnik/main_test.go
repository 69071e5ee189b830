package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sputnik-dev/sputnik/app/components"
	"github.com/sputnik-dev/sputnik/internal/config"
	serrors "github.com/sputnik-dev/sputnik/internal/errors"
	"github.com/sputnik-dev/sputnik/pkg/likes"
	"github.com/sputnik-dev/sputnik/pkg/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sputnik.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	path := writeConfig(t, "server:\n  title: Hello\n")

	out, err := execute(t, "render", "--config", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"<title>Hello</title>",
		`id="login" data-hid="h0"><button data-hid="h1">Like</button></div>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCommandBadConfig(t *testing.T) {
	path := writeConfig(t, "session:\n  store: etcd\n")

	_, err := execute(t, "render", "--config", path)
	if serrors.Code(err) != "E103" {
		t.Errorf("error = %v, want E103", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}
}

func TestWidgetFactoryRecordsOnce(t *testing.T) {
	var (
		mu     sync.Mutex
		events []likes.Event
	)
	rec := likes.RecorderFunc(func(_ context.Context, ev likes.Event) error {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
		return nil
	})

	w := newWidgetFactory(rec, "login", testLogger())("s1")
	btn, ok := w.(*components.LikeButton)
	if !ok {
		t.Fatalf("factory returned %T", w)
	}
	btn.HandleClick()
	btn.HandleClick()

	if len(events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events))
	}
	if events[0].Widget != "login" || events[0].SessionID != "s1" || events[0].LikedAt.IsZero() {
		t.Errorf("event = %+v", events[0])
	}
}

func loadConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := config.Load(writeConfig(t, content))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestOpenBackendsMemory(t *testing.T) {
	cfg := loadConfig(t, "session:\n  store: memory\n")

	b, err := openBackends(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.store.(*session.MemoryStore); !ok {
		t.Errorf("store = %T, want *session.MemoryStore", b.store)
	}
	if _, async := b.recorder.(*likes.Async); async {
		t.Error("no recorders configured, recorder should not be async")
	}
	if err := b.Close(); err != nil {
		t.Error(err)
	}
	_ = b.store.Close()
}

func TestOpenBackendsS3(t *testing.T) {
	cfg := loadConfig(t, "session:\n  store: s3\ns3:\n  bucket: sessions\n  endpoint: http://127.0.0.1:9000\n  use_path_style: true\n")

	b, err := openBackends(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if _, ok := b.store.(*session.S3Store); !ok {
		t.Errorf("store = %T, want *session.S3Store", b.store)
	}
}

func TestOpenBackendsUnreachableRedis(t *testing.T) {
	cfg := loadConfig(t, "session:\n  store: redis\nredis:\n  addr: 127.0.0.1:1\n")

	_, err := openBackends(context.Background(), cfg, testLogger())
	if serrors.Code(err) != "E402" {
		t.Errorf("error = %v, want E402", err)
	}
}

func TestBackendsCloseOrder(t *testing.T) {
	var order []string
	b := &backends{closers: []func() error{
		func() error { order = append(order, "conn"); return nil },
		func() error { order = append(order, "async"); return nil },
	}}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if strings.Join(order, ",") != "async,conn" {
		t.Errorf("close order = %v", order)
	}
}

type fixedCount int64

func (n fixedCount) Count(context.Context, string) (int64, error) { return int64(n), nil }

func TestBackendsFirstCounterWins(t *testing.T) {
	var b backends
	b.setCounter(fixedCount(1))
	b.setCounter(fixedCount(2))

	n, err := b.counter.Count(context.Background(), "login")
	if err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want the first counter's 1", n, err)
	}
}
