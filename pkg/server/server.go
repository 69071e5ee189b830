package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	serrors "github.com/sputnik-dev/sputnik/internal/errors"
	"github.com/sputnik-dev/sputnik/pkg/protocol"
	"github.com/sputnik-dev/sputnik/pkg/render"
	"github.com/sputnik-dev/sputnik/pkg/session"
	"github.com/sputnik-dev/sputnik/pkg/vdom"
)

// Server serves the page, the thin client and widget sessions.
type Server struct {
	config   *ServerConfig
	page     PageFunc
	widget   WidgetFactory
	store    session.Store
	likes    LikeCounter
	sessions *SessionManager
	metrics  *Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   chi.Router

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	store    session.Store
	registry *prometheus.Registry
	tp       trace.TracerProvider
	likes    LikeCounter
}

// WithStore persists detached sessions to store.
func WithStore(store session.Store) Option {
	return func(o *serverOptions) { o.store = store }
}

// WithRegistry registers metrics with reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *serverOptions) { o.registry = reg }
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *serverOptions) { o.tp = tp }
}

// New creates a server that renders page and mounts a widget from factory
// into the element with id cfg.MountID.
func New(cfg *ServerConfig, page PageFunc, factory WidgetFactory, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	cfg = cfg.withDefaults()

	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	mcfg := DefaultMetricsConfig()
	if o.registry != nil {
		mcfg.Registry = o.registry
	}
	metrics := NewMetrics(mcfg)

	s := &Server{
		config:   cfg,
		page:     page,
		widget:   factory,
		store:    o.store,
		likes:    o.likes,
		metrics:  metrics,
		tracer:   newTracer(o.tp),
		logger:   cfg.Logger.With("component", "server"),
		sessions: NewSessionManager(o.store, cfg, metrics),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get(s.config.WebSocketPath, s.handleWebSocket)
	r.Get(DefaultClientPath, s.handleClientScript)
	r.Get("/healthz", s.handleHealth)
	if s.likes != nil {
		r.Get(DefaultLikesPath, s.handleLikes)
	}
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.config.CheckOrigin != nil {
		return s.config.CheckOrigin(r)
	}
	if s.config.DevMode {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// RenderPage writes the full HTML document with the widget's initial state
// rendered into the mount point. It fails with E201 when the page has no
// element with the configured mount id.
func (s *Server) RenderPage(w io.Writer) error {
	body := s.page()
	mount := vdom.FindByID(body, s.config.MountID)
	if mount == nil {
		return serrors.New("E201").
			WithDetailf("no element matches selector %q", "#"+s.config.MountID).
			WithSuggestion(fmt.Sprintf("Add vdom.Div(vdom.ID(%q)) to the page.", s.config.MountID))
	}
	mount.HID = MountHID
	mount.Children = append(mount.Children, &vdom.VNode{
		Kind: vdom.KindComponent,
		Comp: s.widget(""),
	})

	hids := vdom.NewHIDGenerator()
	hids.Next() // h0
	r := render.NewRenderer(render.RendererConfig{HIDs: hids})
	err := r.RenderPage(w, render.PageData{
		Body:          body,
		Title:         s.config.Title,
		WebSocketPath: s.config.WebSocketPath,
		ClientScript:  DefaultClientPath,
	})
	if err != nil {
		return serrors.New("E202").Wrap(err)
	}
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.RenderPage(&buf); err != nil {
		s.logger.Error("page render failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.sessions.Stats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
		"detached": st.Detached,
	})
}

// handleWebSocket upgrades the connection, runs the handshake and starts a
// session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		s.metrics.recordWSError("upgrade")
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)

	sess, err := s.handshake(r, conn)
	if err != nil {
		s.logger.Info("handshake rejected", "remote", r.RemoteAddr, "error", err)
		conn.Close()
		return
	}

	if err := sess.sendFullSync(); err != nil {
		s.logger.Error("initial sync failed", "session_id", sess.ID, "error", err)
		sess.Close()
		return
	}
	sess.Start()
}

// handshake reads the client hello, resumes or creates a session, and
// answers with a server hello.
func (s *Server) handshake(r *http.Request, conn *websocket.Conn) (*Session, error) {
	conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, &ProtocolError{Op: "handshake", Err: err}
	}
	conn.SetReadDeadline(time.Time{})

	frame, err := protocol.DecodeFrame(msg)
	if err == nil && frame.Type != protocol.FrameHandshake {
		err = protocol.ErrNotHandshake
	}
	var hello *protocol.ClientHello
	if err == nil {
		hello, err = protocol.DecodeClientHello(frame.Payload)
	}
	if err != nil {
		s.reject(conn, protocol.HandshakeInvalidFormat)
		return nil, &ProtocolError{Op: "handshake", Err: serrors.New("E302").Wrap(errors.Join(ErrHandshakeFailed, err))}
	}

	if hello.Version != protocol.ProtocolVersion {
		s.reject(conn, protocol.HandshakeVersionMismatch)
		return nil, serrors.New("E301").
			WithDetailf("client speaks v%d, server speaks v%d", hello.Version, protocol.ProtocolVersion)
	}

	ip := clientIP(r)
	sess, err := s.establish(r.Context(), conn, hello.SessionID, ip)
	if err != nil {
		s.reject(conn, protocol.HandshakeServerBusy)
		return nil, err
	}

	data, err := protocol.EncodeServerHello(&protocol.ServerHello{
		Status:     protocol.HandshakeOK,
		SessionID:  sess.ID,
		ServerTime: uint64(time.Now().UnixMilli()),
	})
	if err == nil {
		err = sess.writeFrame(data)
	}
	if err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

// establish resumes the session named by the client, or starts a new one.
func (s *Server) establish(ctx context.Context, conn *websocket.Conn, requested, ip string) (*Session, error) {
	if requested != "" {
		data, err := s.sessions.Resume(ctx, requested, ip)
		if err == nil {
			sess := newSession(requested, conn, s.widget(requested), s.config, s.metrics, s.tracer)
			sess.IP = ip
			if len(data) > 0 {
				if err := sess.Restore(data); err != nil {
					s.logger.Warn("restore failed, starting fresh", "session_id", requested, "error", err)
				}
			}
			s.sessions.Attach(sess)
			s.logger.Info("session resumed", "session_id", requested, "ip", ip)
			return sess, nil
		}
		s.logger.Debug("resume failed, starting new session", "session_id", requested, "error", err)
	}

	id := generateSessionID()
	if err := s.sessions.Register(id, ip); err != nil {
		return nil, err
	}
	sess := newSession(id, conn, s.widget(id), s.config, s.metrics, s.tracer)
	sess.IP = ip
	s.sessions.Attach(sess)
	s.logger.Info("session created", "session_id", id, "ip", ip)
	return sess, nil
}

func (s *Server) reject(conn *websocket.Conn, status protocol.HandshakeStatus) {
	data, err := protocol.EncodeServerHello(&protocol.ServerHello{
		Status:     status,
		ServerTime: uint64(time.Now().UnixMilli()),
	})
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	conn.WriteMessage(websocket.BinaryMessage, data)
}

// clientIP returns the request's remote host. middleware.RealIP has already
// applied X-Forwarded-For / X-Real-IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then shuts
// down gracefully.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address, "mount", "#"+s.config.MountID)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case sig := <-sigCh:
		s.logger.Info("received signal, shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops accepting connections, persists sessions and closes the
// session store.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if err := s.sessions.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("session shutdown: %w", err))
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}
	s.logger.Info("server stopped")
	return errors.Join(errs...)
}
