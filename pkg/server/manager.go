package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sputnik-dev/sputnik/pkg/protocol"
	"github.com/sputnik-dev/sputnik/pkg/session"
)

// SessionManager tracks live sessions and hands disconnected ones to a
// session.Manager for resume.
type SessionManager struct {
	mu   sync.RWMutex
	live map[string]*Session

	sessions *session.Manager
	logger   *slog.Logger
	metrics  *Metrics
}

// NewSessionManager creates a manager. store may be nil, in which case
// detached sessions live in memory only.
func NewSessionManager(store session.Store, cfg *ServerConfig, metrics *Metrics) *SessionManager {
	mcfg := session.DefaultManagerConfig()
	mcfg.MaxSessions = cfg.MaxSessions
	mcfg.MaxDetachedSessions = cfg.MaxDetachedSessions
	mcfg.ResumeWindow = cfg.ResumeWindow
	mcfg.CleanupInterval = cfg.CleanupInterval

	return &SessionManager{
		live:     make(map[string]*Session),
		sessions: session.NewManager(store, mcfg, cfg.Logger),
		logger:   cfg.Logger.With("component", "session_manager"),
		metrics:  metrics,
	}
}

// Resume looks up a detached session and returns its snapshot. A session
// recovered from the store alone is registered again under the same ID.
func (m *SessionManager) Resume(ctx context.Context, id, ip string) ([]byte, error) {
	managed, data, err := m.sessions.Resume(ctx, id)
	if err != nil {
		return nil, err
	}
	if managed == nil {
		if err := m.sessions.Register(&session.ManagedSession{ID: id, IP: ip}); err != nil {
			return nil, err
		}
	}
	m.metrics.recordResume()
	return data, nil
}

// Register records a new session.
func (m *SessionManager) Register(id, ip string) error {
	err := m.sessions.Register(&session.ManagedSession{ID: id, IP: ip})
	if errors.Is(err, session.ErrMaxSessionsReached) {
		return ErrServerBusy
	}
	return err
}

// Attach makes s live, reports its activity to the session manager and
// arranges for it to be detached when it closes.
func (m *SessionManager) Attach(s *Session) {
	s.onClose = m.detach
	s.onTouch = m.sessions.Touch

	m.mu.Lock()
	m.live[s.ID] = s
	m.mu.Unlock()

	m.updateGauges()
}

// detach snapshots a closing session for resume.
func (m *SessionManager) detach(s *Session) {
	m.mu.Lock()
	if m.live[s.ID] == s {
		delete(m.live, s.ID)
	}
	m.mu.Unlock()

	snap, err := s.Snapshot()
	if err != nil {
		m.logger.Warn("snapshot failed, session not resumable", "session_id", s.ID, "error", err)
		m.sessions.Remove(s.ID)
	} else {
		m.sessions.Detach(s.ID, snap)
	}
	m.updateGauges()
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}

// Stats returns the session manager statistics.
func (m *SessionManager) Stats() session.Stats {
	return m.sessions.Stats()
}

func (m *SessionManager) updateGauges() {
	st := m.sessions.Stats()
	m.metrics.setSessions(m.Count(), st.Detached)
}

// Shutdown persists every session, then closes the live ones.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	live := make([]*Session, 0, len(m.live))
	for _, s := range m.live {
		live = append(live, s)
	}
	m.mu.RUnlock()

	snapshots := make(map[string][]byte, len(live))
	for _, s := range live {
		snap, err := s.Snapshot()
		if err != nil {
			m.logger.Warn("snapshot failed on shutdown", "session_id", s.ID, "error", err)
			continue
		}
		snapshots[s.ID] = snap
	}

	err := m.sessions.Shutdown(ctx, snapshots)

	for _, s := range live {
		s.SendClose(protocol.CloseServerShutdown, "server shutting down")
		s.Close()
	}
	m.logger.Info("sessions closed", "count", len(live))
	return err
}
