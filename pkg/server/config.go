package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sputnik-dev/sputnik/pkg/protocol"
)

// Paths served by the Server.
const (
	DefaultWebSocketPath = "/_sputnik/ws"
	DefaultClientPath    = "/_sputnik/client.js"
)

// DefaultMountID is the element id widgets are mounted into.
const DefaultMountID = "login"

// ServerConfig configures the HTTP server and its sessions.
type ServerConfig struct {
	// Address is the listen address (e.g. ":8080").
	Address string

	// Title is the page title.
	Title string

	// MountID is the id of the element the widget is mounted into.
	MountID string

	// WebSocketPath is the endpoint the thin client connects to.
	WebSocketPath string

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// MaxMessageSize is the largest WebSocket message read from a client.
	// Larger messages close the connection. Defaults to one full frame.
	MaxMessageSize int64

	// CheckOrigin validates the Origin header on upgrade. Nil allows
	// same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// HandshakeTimeout bounds the wait for the client hello.
	HandshakeTimeout time.Duration

	// ReadTimeout closes a connection that sends nothing, pongs included.
	ReadTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// HeartbeatInterval is how often the server pings the client.
	HeartbeatInterval time.Duration

	// MaxEventQueue bounds queued events per session. Events beyond it are
	// rejected with a rate-limit error frame.
	MaxEventQueue int

	// MaxSessions caps connected plus detached sessions.
	MaxSessions int

	// MaxDetachedSessions caps sessions kept for resume.
	MaxDetachedSessions int

	// ResumeWindow is how long a detached session can be resumed.
	ResumeWindow time.Duration

	// CleanupInterval is how often expired detached sessions are dropped.
	CleanupInterval time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// DevMode logs every frame and allows any origin.
	DevMode bool
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:             ":8080",
		Title:               "Sputnik",
		MountID:             DefaultMountID,
		WebSocketPath:       DefaultWebSocketPath,
		ReadBufferSize:      4096,
		WriteBufferSize:     4096,
		MaxMessageSize:      protocol.FrameHeaderSize + protocol.MaxPayloadSize,
		HandshakeTimeout:    5 * time.Second,
		ReadTimeout:         60 * time.Second,
		WriteTimeout:        10 * time.Second,
		HeartbeatInterval:   30 * time.Second,
		MaxEventQueue:       64,
		MaxSessions:         10000,
		MaxDetachedSessions: 1000,
		ResumeWindow:        5 * time.Minute,
		CleanupInterval:     time.Minute,
		ShutdownTimeout:     30 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultServerConfig.
func (c *ServerConfig) withDefaults() *ServerConfig {
	d := DefaultServerConfig()
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.MountID == "" {
		out.MountID = d.MountID
	}
	if out.WebSocketPath == "" {
		out.WebSocketPath = d.WebSocketPath
	}
	if out.ReadBufferSize <= 0 {
		out.ReadBufferSize = d.ReadBufferSize
	}
	if out.WriteBufferSize <= 0 {
		out.WriteBufferSize = d.WriteBufferSize
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = d.HandshakeTimeout
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.HeartbeatInterval <= 0 {
		out.HeartbeatInterval = d.HeartbeatInterval
	}
	if out.MaxEventQueue <= 0 {
		out.MaxEventQueue = d.MaxEventQueue
	}
	if out.ResumeWindow <= 0 {
		out.ResumeWindow = d.ResumeWindow
	}
	if out.CleanupInterval <= 0 {
		out.CleanupInterval = d.CleanupInterval
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}
