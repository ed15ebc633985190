package session

import (
	"sync"
	"time"

	"github.com/Mentat-Vision/moe/util/metrics"
	"github.com/Mentat-Vision/moe/util/uniqueid"
)

// DefaultOutboundBuffer is the per-session outbound channel capacity. A
// session whose transport cannot drain this many messages is considered
// slow and further messages are dropped rather than blocking dispatch.
const DefaultOutboundBuffer = 64

// State is the lifecycle state of a camera session.
type State int

const (
	// StateActive means frames arrived recently.
	StateActive State = iota
	// StateIdle means no activity for the manager's idle timeout. Stats
	// report the camera at 0 fps; a new frame brings it back to Active.
	StateIdle
	// StateClosed means the transport is gone. Irreversible.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateIdle:
		return "idle"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one camera connection. The Manager owns registration and
// lifecycle transitions; the dispatch layer only pushes results through
// Send. Outbound delivery is non-blocking: a full buffer drops the
// message and counts it, it never stalls a worker.
type Session struct {
	ID       string
	CameraID string
	Name     string

	createdAt time.Time
	outbound  chan []byte

	mu           sync.Mutex
	lastActivity time.Time
	state        State
}

func newSession(cameraID, name string, buffer int) *Session {
	now := time.Now()
	return &Session{
		ID:           uniqueid.UniqueId(),
		CameraID:     cameraID,
		Name:         name,
		createdAt:    now,
		outbound:     make(chan []byte, buffer),
		lastActivity: now,
		state:        StateActive,
	}
}

// Send queues a message for the session's transport. Returns false when
// the message was dropped (buffer full or session closed).
func (s *Session) Send(msg []byte) bool {
	// The lock is held across the send so close() can never close the
	// channel between the state check and the push. The push itself is
	// non-blocking, so the lock is never held for long.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return false
	}
	select {
	case s.outbound <- msg:
		return true
	default:
		metrics.RecordDeliveryDrop(s.CameraID)
		return false
	}
}

// Outbound is drained by the transport write loop. It is closed when the
// session closes.
func (s *Session) Outbound() <-chan []byte {
	return s.outbound
}

// Touch records frame activity and revives an idle session.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.lastActivity = time.Now()
	s.state = StateActive
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// markIdle transitions Active -> Idle. Closed sessions are left alone.
func (s *Session) markIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateActive {
		s.state = StateIdle
	}
}

// close transitions to Closed and closes the outbound channel. Safe to
// call once; the Manager guarantees that.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	close(s.outbound)
}
