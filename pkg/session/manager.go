package session

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Manager tracks connected and detached sessions.
type Manager struct {
	mu sync.Mutex

	sessions map[string]*ManagedSession

	// Detached sessions, front = most recently detached or touched.
	detached      *list.List
	detachedIndex map[string]*list.Element

	config ManagerConfig
	store  Store
	logger *slog.Logger
	now    func() time.Time

	done    chan struct{}
	stopped bool
}

// ManagedSession is the manager's bookkeeping for one session.
type ManagedSession struct {
	ID             string
	IP             string
	CreatedAt      time.Time
	LastActive     time.Time
	DisconnectedAt time.Time

	// Data is the snapshot taken at detach time.
	Data []byte

	Connected bool

	// storeTouchedAt is when the stored snapshot's expiry was last extended.
	storeTouchedAt time.Time
}

// ManagerConfig configures the session manager.
type ManagerConfig struct {
	// MaxSessions caps connected plus detached sessions. Zero means no limit.
	MaxSessions int

	// MaxDetachedSessions triggers LRU eviction of detached sessions.
	MaxDetachedSessions int

	// ResumeWindow is how long a detached session stays resumable.
	ResumeWindow time.Duration

	// CleanupInterval is how often expired detached sessions are dropped.
	CleanupInterval time.Duration

	// StoreTimeout bounds each background store call.
	StoreTimeout time.Duration
}

// DefaultManagerConfig returns a ManagerConfig with sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxSessions:         10000,
		MaxDetachedSessions: 1000,
		ResumeWindow:        5 * time.Minute,
		CleanupInterval:     time.Minute,
		StoreTimeout:        5 * time.Second,
	}
}

var (
	ErrMaxSessionsReached = errors.New("session: maximum session limit reached")
	ErrSessionExpired     = errors.New("session: session has expired")
	ErrSessionNotFound    = errors.New("session: session not found")
	ErrManagerStopped     = errors.New("session: manager is stopped")
)

// NewManager creates a manager and starts its cleanup loop. store may be nil.
func NewManager(store Store, config ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}
	if config.StoreTimeout <= 0 {
		config.StoreTimeout = 5 * time.Second
	}

	m := &Manager{
		sessions:      make(map[string]*ManagedSession),
		detached:      list.New(),
		detachedIndex: make(map[string]*list.Element),
		config:        config,
		store:         store,
		logger:        logger.With("component", "session_manager"),
		now:           time.Now,
		done:          make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

// Register adds a new connected session.
func (m *Manager) Register(sess *ManagedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrManagerStopped
	}
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		// Make room by dropping the stalest detached session, if any.
		if m.detached.Len() == 0 {
			return ErrMaxSessionsReached
		}
		m.evictOneLocked()
	}

	now := m.now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.LastActive = now
	sess.storeTouchedAt = now
	sess.Connected = true
	m.sessions[sess.ID] = sess

	m.logger.Debug("session registered", "session_id", sess.ID, "ip", sess.IP, "total", len(m.sessions))
	return nil
}

// Detach marks a session disconnected and keeps its snapshot for resume.
// The snapshot is also written to the store in the background.
func (m *Manager) Detach(sessionID string, snapshot []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok || m.stopped {
		return
	}

	now := m.now()
	sess.Connected = false
	sess.DisconnectedAt = now
	sess.Data = snapshot

	if elem, ok := m.detachedIndex[sessionID]; ok {
		m.detached.Remove(elem)
	}
	m.detachedIndex[sessionID] = m.detached.PushFront(sessionID)

	for m.config.MaxDetachedSessions > 0 && m.detached.Len() > m.config.MaxDetachedSessions {
		m.evictOneLocked()
	}

	if m.store != nil && len(snapshot) > 0 {
		expiresAt := now.Add(m.config.ResumeWindow)
		go m.withStore(func(ctx context.Context) error {
			return m.store.Save(ctx, sessionID, snapshot, expiresAt)
		}, "save", sessionID)
	}

	m.logger.Debug("session detached", "session_id", sessionID, "detached", m.detached.Len())
}

// Resume reattaches a session and returns its snapshot.
//
// If the session is unknown in memory the store is consulted; a stored
// snapshot is returned with a nil *ManagedSession and the caller registers a
// new session under the same ID. The store is read without holding the
// manager lock and the read is bounded by StoreTimeout.
func (m *Manager) Resume(ctx context.Context, sessionID string) (*ManagedSession, []byte, error) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil, nil, ErrManagerStopped
	}
	if _, ok := m.sessions[sessionID]; ok || m.store == nil {
		defer m.mu.Unlock()
		return m.resumeLocked(sessionID)
	}
	m.mu.Unlock()

	lctx, cancel := context.WithTimeout(ctx, m.config.StoreTimeout)
	data, err := m.store.Load(lctx, sessionID)
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return nil, nil, ErrManagerStopped
	}
	if _, ok := m.sessions[sessionID]; ok {
		// Registered by someone else while the store was being read.
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if data == nil {
		return nil, nil, ErrSessionNotFound
	}
	return nil, data, nil
}

func (m *Manager) resumeLocked(sessionID string) (*ManagedSession, []byte, error) {
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	if sess.Connected {
		// A second tab or a reconnect racing the old socket's close.
		return nil, nil, ErrSessionNotFound
	}
	if m.now().Sub(sess.DisconnectedAt) > m.config.ResumeWindow {
		m.removeLocked(sessionID)
		return nil, nil, ErrSessionExpired
	}

	if elem, ok := m.detachedIndex[sessionID]; ok {
		m.detached.Remove(elem)
		delete(m.detachedIndex, sessionID)
	}
	sess.Connected = true
	sess.DisconnectedAt = time.Time{}
	sess.LastActive = m.now()
	data := sess.Data
	sess.Data = nil

	m.logger.Debug("session resumed", "session_id", sessionID)
	return sess, data, nil
}

// Touch records activity on a session. While the client stays active the
// stored snapshot's expiry is pushed forward, at most once per half resume
// window, so a snapshot written before a crash outlives a busy session.
func (m *Manager) Touch(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok || m.stopped {
		return
	}
	now := m.now()
	sess.LastActive = now

	if m.store == nil || now.Sub(sess.storeTouchedAt) < m.config.ResumeWindow/2 {
		return
	}
	sess.storeTouchedAt = now
	expiresAt := now.Add(m.config.ResumeWindow)
	go m.withStore(func(ctx context.Context) error {
		return m.store.Touch(ctx, sessionID, expiresAt)
	}, "touch", sessionID)
}

// Remove forgets a session and deletes its stored snapshot.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(sessionID)
}

func (m *Manager) removeLocked(sessionID string) {
	if _, ok := m.sessions[sessionID]; !ok {
		return
	}
	delete(m.sessions, sessionID)
	if elem, ok := m.detachedIndex[sessionID]; ok {
		m.detached.Remove(elem)
		delete(m.detachedIndex, sessionID)
	}

	if m.store != nil {
		go m.withStore(func(ctx context.Context) error {
			return m.store.Delete(ctx, sessionID)
		}, "delete", sessionID)
	}
	m.logger.Debug("session removed", "session_id", sessionID, "remaining", len(m.sessions))
}

// evictOneLocked drops the least recently used detached session. Its
// snapshot stays in the store so a later resume can still find it.
func (m *Manager) evictOneLocked() {
	back := m.detached.Back()
	if back == nil {
		return
	}
	id := back.Value.(string)
	m.detached.Remove(back)
	delete(m.detachedIndex, id)
	delete(m.sessions, id)

	m.logger.Debug("evicted detached session", "session_id", id)
}

func (m *Manager) withStore(fn func(ctx context.Context) error, op, sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.StoreTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		m.logger.Warn("session store call failed", "op", op, "session_id", sessionID, "error", err)
	}
}

func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.done:
			return
		}
	}
}

func (m *Manager) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}

	now := m.now()
	var expired []string
	for id, sess := range m.sessions {
		if !sess.Connected && now.Sub(sess.DisconnectedAt) > m.config.ResumeWindow {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		m.removeLocked(id)
	}
	if len(expired) > 0 {
		m.logger.Debug("cleaned up expired sessions", "count", len(expired), "remaining", len(m.sessions))
	}
}

// Shutdown stops the manager and flushes every snapshot to the store.
// snapshots supplies fresh snapshots for still-connected sessions.
func (m *Manager) Shutdown(ctx context.Context, snapshots map[string][]byte) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	close(m.done)

	expiresAt := m.now().Add(m.config.ResumeWindow)
	toSave := make(map[string]Data)
	for id, sess := range m.sessions {
		data := sess.Data
		if fresh, ok := snapshots[id]; ok {
			data = fresh
		}
		if len(data) > 0 {
			toSave[id] = Data{Bytes: data, ExpiresAt: expiresAt}
		}
	}
	m.mu.Unlock()

	if m.store == nil || len(toSave) == 0 {
		return nil
	}
	if err := m.store.SaveAll(ctx, toSave); err != nil {
		m.logger.Warn("failed to persist sessions on shutdown", "error", err, "count", len(toSave))
		return err
	}
	m.logger.Info("persisted sessions on shutdown", "count", len(toSave))
	return nil
}

// Stats is a point-in-time view of the manager.
type Stats struct {
	Total     int
	Connected int
	Detached  int
}

// Stats returns manager statistics.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{Total: len(m.sessions), Detached: m.detached.Len()}
	for _, sess := range m.sessions {
		if sess.Connected {
			st.Connected++
		}
	}
	return st
}
