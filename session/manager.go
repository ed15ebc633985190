package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mentat-Vision/moe/util/logger"
	"github.com/Mentat-Vision/moe/util/metrics"
)

// DefaultIdleTimeout matches the dashboard's staleness cutoff: a camera
// with no frames for this long is reported inactive.
const DefaultIdleTimeout = 10 * time.Second

// CloseHook runs when a session closes, before it leaves the registry.
// The dispatch layer registers one to cancel pending aggregates.
type CloseHook func(cameraID string)

// Manager owns the session registry. One session per camera: a reconnect
// closes the previous session and starts a fresh one, so a stale transport
// can never receive results meant for its replacement.
type Manager struct {
	logger      *logger.Logger
	idleTimeout time.Duration
	buffer      int

	mu       sync.RWMutex
	byID     map[string]*Session
	byCamera map[string]*Session
	hooks    []CloseHook

	sweeping atomic.Bool
	quit     chan struct{}
	done     chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTimeout overrides the Active -> Idle cutoff.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idleTimeout = d }
}

// WithOutboundBuffer overrides the per-session outbound channel capacity.
func WithOutboundBuffer(n int) Option {
	return func(m *Manager) { m.buffer = n }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger:      logger.NewLogger("SessionManager"),
		idleTimeout: DefaultIdleTimeout,
		buffer:      DefaultOutboundBuffer,
		byID:        make(map[string]*Session),
		byCamera:    make(map[string]*Session),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnClose registers a hook invoked for every session close. Must be called
// before sessions are registered.
func (m *Manager) OnClose(hook CloseHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// Register creates a fresh session for the camera. An existing session for
// the same camera is closed first, with its close hooks run.
func (m *Manager) Register(cameraID, name string) *Session {
	m.mu.Lock()
	prev := m.byCamera[cameraID]
	if prev != nil {
		m.removeLocked(prev)
	}
	sess := newSession(cameraID, name, m.buffer)
	m.byID[sess.ID] = sess
	m.byCamera[cameraID] = sess
	count := len(m.byID)
	hooks := m.hooks
	m.mu.Unlock()

	if prev != nil {
		prev.close()
		for _, hook := range hooks {
			hook(cameraID)
		}
		m.logger.Warnf("camera %s reconnected, closed stale session %s", cameraID, prev.ID)
	}

	metrics.SetActiveSessions(count)
	m.logger.Infof("registered camera %s (session %s, name %q)", cameraID, sess.ID, name)
	return sess
}

// Get returns the session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.byID[id]
	return sess, ok
}

// GetByCamera returns the live session for a camera.
func (m *Manager) GetByCamera(cameraID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.byCamera[cameraID]
	return sess, ok
}

// Sessions returns a snapshot of all registered sessions.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.byID))
	for _, sess := range m.byID {
		out = append(out, sess)
	}
	return out
}

// Close tears down a session: transport gone, hooks run, registry entry
// removed. Closing an unknown ID is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	sess, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	m.removeLocked(sess)
	count := len(m.byID)
	hooks := m.hooks
	m.mu.Unlock()

	sess.close()
	for _, hook := range hooks {
		hook(sess.CameraID)
	}
	metrics.SetActiveSessions(count)
	m.logger.Infof("closed session %s (camera %s)", sess.ID, sess.CameraID)
}

func (m *Manager) removeLocked(sess *Session) {
	delete(m.byID, sess.ID)
	if m.byCamera[sess.CameraID] == sess {
		delete(m.byCamera, sess.CameraID)
	}
}

// StartSweeper launches the idle sweep loop. Sessions with no activity for
// the idle timeout become Idle; they are not closed, only the transport
// going away closes a session.
func (m *Manager) StartSweeper(interval time.Duration) {
	if !m.sweeping.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.quit:
				return
			}
		}
	}()
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.idleTimeout)
	for _, sess := range m.Sessions() {
		if sess.State() == StateActive && sess.LastActivity().Before(cutoff) {
			sess.markIdle()
			m.logger.Debugf("camera %s idle, no frames for %s", sess.CameraID, m.idleTimeout)
		}
	}
}

// Stop halts the sweeper and closes every session.
func (m *Manager) Stop() {
	close(m.quit)
	if m.sweeping.Load() {
		<-m.done
	}
	for _, sess := range m.Sessions() {
		m.Close(sess.ID)
	}
}
