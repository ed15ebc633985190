package stats

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mentat-Vision/moe/util/logger"
	"github.com/Mentat-Vision/moe/util/uniqueid"
)

// subscriberBuffer is the per-subscriber channel capacity. Slow
// dashboard consumers get messages dropped, never block publishers.
const subscriberBuffer = 16

// DefaultBroadcastThrottle bounds how often a camera's combined results
// are fanned out to subscribers; in-between results are dropped for the
// dashboard (the owning camera session still gets every one).
const DefaultBroadcastThrottle = 100 * time.Millisecond

// DefaultSnapshotInterval is how often full stats snapshots are pushed.
const DefaultSnapshotInterval = time.Second

// Subscriber is one dashboard connection's view of the publisher: a
// buffered feed plus the set of camera rooms it has joined.
type Subscriber struct {
	ID string
	C  chan []byte

	mu      sync.Mutex
	cameras map[string]struct{}
	global  bool
	closed  bool
}

// Join subscribes to one camera's room.
func (s *Subscriber) Join(cameraID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameras[cameraID] = struct{}{}
}

// Leave unsubscribes from one camera's room.
func (s *Subscriber) Leave(cameraID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cameras, cameraID)
}

func (s *Subscriber) wants(cameraID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.global {
		return true
	}
	_, ok := s.cameras[cameraID]
	return ok
}

// push is non-blocking; a full buffer drops the message. The mutex is
// held across the send so closeFeed cannot close C underneath it.
func (s *Subscriber) push(msg []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.C <- msg:
		return true
	default:
		return false
	}
}

func (s *Subscriber) closeFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.C)
}

// Publisher fans stats snapshots and combined results out to dashboard
// subscribers. Camera results go only to the rooms that subscribed to
// them (or to global subscribers); snapshots go to everyone.
type Publisher struct {
	logger    *logger.Logger
	collector *Collector
	throttle  time.Duration

	mu       sync.RWMutex
	subs     map[string]*Subscriber
	lastPush map[string]time.Time

	ticking atomic.Bool
	quit    chan struct{}
	done    chan struct{}
}

func NewPublisher(collector *Collector) *Publisher {
	return &Publisher{
		logger:    logger.NewLogger("StatsPublisher"),
		collector: collector,
		throttle:  DefaultBroadcastThrottle,
		subs:      make(map[string]*Subscriber),
		lastPush:  make(map[string]time.Time),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Subscribe creates a subscriber. Global subscribers receive results for
// every camera regardless of rooms.
func (p *Publisher) Subscribe(global bool) *Subscriber {
	sub := &Subscriber{
		ID:      uniqueid.UniqueId(),
		C:       make(chan []byte, subscriberBuffer),
		cameras: make(map[string]struct{}),
		global:  global,
	}
	p.mu.Lock()
	p.subs[sub.ID] = sub
	p.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscriber and closes its feed.
func (p *Publisher) Unsubscribe(id string) {
	p.mu.Lock()
	sub, ok := p.subs[id]
	delete(p.subs, id)
	p.mu.Unlock()
	if ok {
		sub.closeFeed()
	}
}

// PublishCombined fans one camera's combined result out to interested
// subscribers, throttled per camera.
func (p *Publisher) PublishCombined(cameraID string, combined []byte) {
	p.mu.Lock()
	now := time.Now()
	if now.Sub(p.lastPush[cameraID]) < p.throttle {
		p.mu.Unlock()
		return
	}
	p.lastPush[cameraID] = now
	subs := p.snapshotSubsLocked()
	p.mu.Unlock()

	for _, sub := range subs {
		if sub.wants(cameraID) && !sub.push(combined) {
			p.logger.Debugf("dropped combined result for slow subscriber %s", sub.ID)
		}
	}
}

// PublishSnapshot pushes a full stats snapshot to every subscriber.
func (p *Publisher) PublishSnapshot() {
	msg, err := json.Marshal(map[string]any{
		"type": "stats",
		"data": p.collector.Snapshot(),
	})
	if err != nil {
		p.logger.Errorf("failed to marshal stats snapshot: %v", err)
		return
	}

	p.mu.RLock()
	subs := p.snapshotSubsLocked()
	p.mu.RUnlock()
	for _, sub := range subs {
		sub.push(msg)
	}
}

// caller holds p.mu (read or write)
func (p *Publisher) snapshotSubsLocked() []*Subscriber {
	subs := make([]*Subscriber, 0, len(p.subs))
	for _, sub := range p.subs {
		subs = append(subs, sub)
	}
	return subs
}

// Start launches the periodic snapshot loop.
func (p *Publisher) Start(interval time.Duration) {
	if !p.ticking.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.PublishSnapshot()
			case <-p.quit:
				return
			}
		}
	}()
}

// Stop halts the snapshot loop and closes every subscriber feed.
func (p *Publisher) Stop() {
	close(p.quit)
	if p.ticking.Load() {
		<-p.done
	}
	p.mu.Lock()
	subs := p.snapshotSubsLocked()
	p.subs = make(map[string]*Subscriber)
	p.mu.Unlock()
	for _, sub := range subs {
		sub.closeFeed()
	}
}
