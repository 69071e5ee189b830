package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sputnik-dev/sputnik/pkg/protocol"
	"github.com/sputnik-dev/sputnik/pkg/render"
	"github.com/sputnik-dev/sputnik/pkg/session"
	"github.com/sputnik-dev/sputnik/pkg/vdom"
)

// MountHID is the hydration ID of the mount element. The page renders it on
// the mount point so the client can address it before any patch arrives.
const MountHID = "h0"

// Session is one WebSocket connection hosting one mounted widget.
type Session struct {
	ID        string
	IP        string
	CreatedAt time.Time

	conn    *websocket.Conn
	config  *ServerConfig
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	root     *ComponentInstance
	hids     *vdom.HIDGenerator
	tree     *vdom.VNode
	handlers map[string]any

	events   chan *protocol.Event
	renderCh chan struct{}
	done     chan struct{}

	writeMu    sync.Mutex
	closeOnce  sync.Once
	closed     atomic.Bool
	sendSeq    atomic.Uint64
	lastActive atomic.Int64

	onClose func(*Session)
	onTouch func(id string)
}

// generateSessionID returns 16 random bytes as hex.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("server: session id: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(id string, conn *websocket.Conn, w Widget, cfg *ServerConfig, metrics *Metrics, tracer trace.Tracer) *Session {
	renderCh := make(chan struct{}, 1)
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		config:    cfg,
		logger:    cfg.Logger.With("session_id", id),
		metrics:   metrics,
		tracer:    tracer,
		hids:      vdom.NewHIDGenerator(),
		events:    make(chan *protocol.Event, cfg.MaxEventQueue),
		renderCh:  renderCh,
		done:      make(chan struct{}),
	}
	s.root = newComponentInstance(w, renderCh)
	s.lastActive.Store(time.Now().UnixNano())
	return s
}

// LastActive returns the time of the last frame received from the client.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
	if s.onTouch != nil {
		s.onTouch(s.ID)
	}
}

// Widget returns the mounted widget.
func (s *Session) Widget() Widget {
	return s.root.Widget
}

// QueueEvent queues an event for the event loop.
func (s *Session) QueueEvent(ev *protocol.Event) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.events <- ev:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// sendFullSync renders the widget from scratch and replaces the mount
// element's children with it.
func (s *Session) sendFullSync() error {
	s.hids.Reset()
	s.hids.Next() // h0 belongs to the mount element
	s.tree = s.root.mount()
	vdom.AssignHIDs(s.tree, s.hids)
	s.handlers = vdom.CollectHandlers(s.tree)

	patches, err := s.toWire([]vdom.Patch{{
		Op:   vdom.PatchReplaceChildren,
		HID:  MountHID,
		Node: s.tree,
	}})
	if err != nil {
		return err
	}
	return s.sendPatches(patches)
}

// handleEvent runs the handler bound to ev and sends the resulting patches.
// Events whose HID is no longer rendered are dropped: the element they were
// aimed at was replaced by an earlier event.
func (s *Session) handleEvent(ev *protocol.Event) {
	start := time.Now()
	_, span := s.tracer.Start(context.Background(), "sputnik.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("sputnik.session_id", s.ID),
			attribute.String("sputnik.hid", ev.HID),
			attribute.String("sputnik.event_type", ev.Type.String()),
			attribute.Int64("sputnik.event_seq", int64(ev.Seq)),
		),
	)
	defer span.End()

	handler, ok := s.handlers[ev.HID+"_"+ev.Type.HandlerKey()]
	if !ok {
		s.logger.Debug("dropping event for unknown handler", "hid", ev.HID, "type", ev.Type.String())
		span.SetAttributes(attribute.Bool("sputnik.stale", true))
		s.metrics.recordStaleEvent(ev.Type.String())
		return
	}

	err := s.safeExecute(ev, handler)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.recordEventError(ev.Type.String(), "handler")
		s.sendError(protocol.ErrHandlerPanic, "handler failed")
	}

	n := s.renderDirty()
	span.SetAttributes(attribute.Int("sputnik.patch_count", n))
	if err == nil {
		span.SetStatus(codes.Ok, "")
	}
	s.metrics.recordEvent(ev.Type.String(), time.Since(start))
}

// safeExecute runs a handler, turning a panic into a *HandlerError.
func (s *Session) safeExecute(ev *protocol.Event, handler any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			herr := &HandlerError{
				SessionID: s.ID,
				HID:       ev.HID,
				EventType: ev.Type.String(),
				Panic:     r,
				Stack:     debug.Stack(),
			}
			s.logger.Error("handler panic",
				"hid", ev.HID,
				"event", ev.Type.String(),
				"panic", r,
				"stack", string(herr.Stack))
			err = herr
		}
	}()

	if err := vdom.Invoke(handler, ev.Value); err != nil {
		s.logger.Error("handler failed", "hid", ev.HID, "error", err)
		return &HandlerError{SessionID: s.ID, HID: ev.HID, EventType: ev.Type.String(), Err: err}
	}
	return nil
}

// renderDirty re-renders the widget if it is dirty and sends the diff.
// It returns the number of patches sent.
func (s *Session) renderDirty() int {
	if !s.root.IsDirty() || s.closed.Load() {
		return 0
	}

	next := s.root.mount()
	diff := vdom.Diff(s.tree, next)
	s.tree = next
	vdom.AssignHIDs(next, s.hids)
	s.handlers = vdom.CollectHandlers(next)

	if len(diff) == 0 {
		return 0
	}
	patches, err := s.toWire(diff)
	if err != nil {
		s.logger.Error("patch encoding failed", "error", err)
		s.sendError(protocol.ErrServerError, "render failed")
		return 0
	}
	if err := s.sendPatches(patches); err != nil {
		return 0
	}
	return len(patches)
}

// toWire converts tree patches to protocol patches, rendering node payloads
// to HTML.
func (s *Session) toWire(patches []vdom.Patch) ([]protocol.Patch, error) {
	r := render.NewRenderer(render.RendererConfig{HIDs: s.hids})
	out := make([]protocol.Patch, 0, len(patches))
	for _, p := range patches {
		wp := protocol.Patch{
			Op:    protocol.PatchOp(p.Op),
			HID:   p.HID,
			Key:   p.Key,
			Value: p.Value,
			Index: p.Index,
		}
		var err error
		switch p.Op {
		case vdom.PatchInsertNode:
			wp.HID = p.ParentID
			wp.HTML, err = r.RenderToString(p.Node)
		case vdom.PatchReplaceNode:
			wp.HTML, err = r.RenderToString(p.Node)
		case vdom.PatchReplaceChildren:
			wp.HTML, err = r.RenderChildren(p.Node)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s patch: %w", p.Op, err)
		}
		out = append(out, wp)
	}
	return out, nil
}

// sendPatches sends one sequenced patches frame.
func (s *Session) sendPatches(patches []protocol.Patch) error {
	seq := s.sendSeq.Add(1)
	data, err := protocol.EncodePatches(&protocol.PatchesFrame{Seq: seq, Patches: patches})
	if err != nil {
		s.logger.Error("patches encode error", "seq", seq, "error", err)
		return err
	}
	if err := s.writeFrame(data); err != nil {
		return err
	}
	s.metrics.recordPatches(len(patches))
	return nil
}

// sendError sends a non-fatal error frame.
func (s *Session) sendError(code protocol.ErrorCode, message string) {
	data, err := protocol.EncodeErrorMessage(protocol.NewError(code, message))
	if err != nil {
		return
	}
	_ = s.writeFrame(data)
}

// SendClose tells the client the server is closing the session.
func (s *Session) SendClose(reason protocol.CloseReason, message string) {
	data, err := protocol.EncodeControl(protocol.NewClose(reason, message))
	if err != nil {
		return
	}
	_ = s.writeFrame(data)
}

// writeFrame writes one binary message. A failed write closes the session.
func (s *Session) writeFrame(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.config.DevMode {
		s.logger.Debug("send frame", "type", protocol.FrameType(data[0]).String(), "bytes", len(data))
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.logger.Error("write error", "error", err)
		s.metrics.recordWSError("write")
		go s.Close()
		return &SessionError{SessionID: s.ID, Op: "write", Err: err}
	}
	return nil
}

// Snapshot returns the encoded session snapshot.
func (s *Session) Snapshot() ([]byte, error) {
	state, err := s.root.Widget.Snapshot()
	if err != nil {
		return nil, &SessionError{SessionID: s.ID, Op: "snapshot", Err: err}
	}
	snap := &session.Snapshot{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive(),
		Widgets:    map[string]json.RawMessage{s.config.MountID: state},
		Version:    session.SnapshotVersion,
	}
	return snap.Encode()
}

// Restore loads widget state from an encoded snapshot. It must run before
// the first render.
func (s *Session) Restore(data []byte) error {
	snap, err := session.DecodeSnapshot(data)
	if err != nil {
		return &SessionError{SessionID: s.ID, Op: "restore", Err: err}
	}
	if !snap.CreatedAt.IsZero() {
		s.CreatedAt = snap.CreatedAt
	}
	state, ok := snap.Widgets[s.config.MountID]
	if !ok {
		return nil
	}
	if err := s.root.Widget.Restore(state); err != nil {
		return &SessionError{SessionID: s.ID, Op: "restore", Err: err}
	}
	return nil
}

// Close stops the session loops and closes the connection. The close
// callback runs once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.onClose != nil {
			s.onClose(s)
		}

		s.writeMu.Lock()
		s.closed.Store(true)
		s.writeMu.Unlock()

		close(s.done)
		s.conn.Close()
		s.logger.Debug("session closed")
	})
}
