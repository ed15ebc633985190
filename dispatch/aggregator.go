package dispatch

import (
	"encoding/json"
	"time"

	"github.com/Mentat-Vision/moe/expert"
	"github.com/Mentat-Vision/moe/session"
	"github.com/Mentat-Vision/moe/util/logger"
	"github.com/Mentat-Vision/moe/util/metrics"
)

// StatsFunc supplies the server_stats block embedded in combined results.
type StatsFunc func() any

// CombinedHook observes every combined result right before delivery.
// The server uses it to retain the latest result per camera and to feed
// the dashboard publisher.
type CombinedHook func(cameraID string, combined []byte)

type aggregateKey struct {
	camera   string
	sequence uint64
}

// pending is one in-flight fan-out aggregate. Owned exclusively by the
// aggregator goroutine; no locks.
type pending struct {
	sess        *session.Session
	outstanding map[string]struct{}
	results     map[string]expert.Payload
	timer       *time.Timer
}

// Aggregator collects per-expert results into one combined response per
// (camera, sequence). All state lives on a single goroutine; Open,
// Collect, CancelCamera and timer expiry are posted to its op channel,
// so completion, timeout and cancellation can never race. Each aggregate
// is delivered at most once: the entry is removed the moment it
// completes, expires or is cancelled, and anything arriving later is
// discarded as a straggler.
type Aggregator struct {
	logger  *logger.Logger
	statsFn StatsFunc
	hooks   []CombinedHook

	pendings map[aggregateKey]*pending
	ops      chan func()
	quit     chan struct{}
	done     chan struct{}
}

func NewAggregator(statsFn StatsFunc) *Aggregator {
	return &Aggregator{
		logger:   logger.NewLogger("Aggregator"),
		statsFn:  statsFn,
		pendings: make(map[aggregateKey]*pending),
		ops:      make(chan func(), 256),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnCombined registers a delivery observer. Must be called before Start.
func (a *Aggregator) OnCombined(hook CombinedHook) {
	a.hooks = append(a.hooks, hook)
}

func (a *Aggregator) Start() {
	go a.loop()
}

func (a *Aggregator) Stop() {
	close(a.quit)
	<-a.done
}

func (a *Aggregator) loop() {
	defer close(a.done)
	for {
		select {
		case op := <-a.ops:
			op()
		case <-a.quit:
			for key, p := range a.pendings {
				p.timer.Stop()
				delete(a.pendings, key)
			}
			return
		}
	}
}

func (a *Aggregator) post(op func()) {
	select {
	case a.ops <- op:
	case <-a.quit:
	}
}

// Open starts an aggregate awaiting one result from each named expert.
// The timeout should be the maximum of the participating experts'
// backend timeouts; when it fires, whatever has arrived is delivered as
// a partial result with the missing experts simply absent.
func (a *Aggregator) Open(sess *session.Session, sequence uint64, experts []string, timeout time.Duration) {
	a.post(func() {
		key := aggregateKey{camera: sess.CameraID, sequence: sequence}
		if _, exists := a.pendings[key]; exists {
			a.logger.Warnf("duplicate aggregate for %s seq %d, ignoring", key.camera, sequence)
			return
		}
		p := &pending{
			sess:        sess,
			outstanding: make(map[string]struct{}, len(experts)),
			results:     make(map[string]expert.Payload, len(experts)),
		}
		for _, name := range experts {
			p.outstanding[name] = struct{}{}
		}
		p.timer = time.AfterFunc(timeout, func() {
			a.post(func() { a.expire(key) })
		})
		a.pendings[key] = p
	})
}

// Collect is the sink for fan-out jobs. Results for an aggregate that
// already completed, expired or was cancelled are discarded.
func (a *Aggregator) Collect(res expert.Result) {
	a.post(func() {
		key := aggregateKey{camera: res.CameraID, sequence: res.Sequence}
		p, ok := a.pendings[key]
		if !ok {
			metrics.RecordStragglerResult(res.Expert)
			a.logger.Debugf("straggler result from %s for %s seq %d", res.Expert, res.CameraID, res.Sequence)
			return
		}
		if _, awaited := p.outstanding[res.Expert]; !awaited {
			return
		}
		delete(p.outstanding, res.Expert)
		if res.Failed() {
			p.results[res.Expert] = expert.Payload{"error": res.Err}
		} else {
			p.results[res.Expert] = res.Payload
		}
		if len(p.outstanding) == 0 {
			a.finish(key, p)
		}
	})
}

// Withdraw removes one expert from an aggregate without recording a
// result. The router calls it when a worker queue rejects the job, so a
// dropped frame never holds the aggregate open until timeout.
func (a *Aggregator) Withdraw(cameraID string, sequence uint64, expertName string) {
	a.post(func() {
		key := aggregateKey{camera: cameraID, sequence: sequence}
		p, ok := a.pendings[key]
		if !ok {
			return
		}
		delete(p.outstanding, expertName)
		if len(p.outstanding) == 0 {
			a.finish(key, p)
		}
	})
}

// CancelCamera drops every pending aggregate for a camera without
// delivery. Wired as a session close hook.
func (a *Aggregator) CancelCamera(cameraID string) {
	a.post(func() {
		for key, p := range a.pendings {
			if key.camera == cameraID {
				p.timer.Stop()
				delete(a.pendings, key)
			}
		}
	})
}

func (a *Aggregator) expire(key aggregateKey) {
	p, ok := a.pendings[key]
	if !ok {
		return
	}
	metrics.RecordAggregateTimeout(key.camera)
	a.logger.Warnf("aggregate for %s seq %d timed out with %d experts missing",
		key.camera, key.sequence, len(p.outstanding))
	a.finish(key, p)
}

// finish delivers the combined result and removes the entry. Runs on the
// aggregator goroutine only.
func (a *Aggregator) finish(key aggregateKey, p *pending) {
	p.timer.Stop()
	delete(a.pendings, key)

	combined := BuildCombined(key.camera, p.results, a.statsFn)
	for _, hook := range a.hooks {
		hook(key.camera, combined)
	}
	p.sess.Send(combined)
}

// BuildCombined marshals the combined response envelope. Shared with the
// router's empty fan-out short-circuit.
func BuildCombined(cameraID string, results map[string]expert.Payload, statsFn StatsFunc) []byte {
	if results == nil {
		results = map[string]expert.Payload{}
	}
	envelope := map[string]any{
		"camera_id": cameraID,
		"results":   results,
		"timestamp": float64(time.Now().UnixNano()) / 1e9,
	}
	if statsFn != nil {
		envelope["server_stats"] = statsFn()
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		// Payloads come from json.Unmarshal and map/scalar literals, so
		// this cannot fail at runtime.
		logger.NewLogger("Aggregator").Errorf("failed to marshal combined result: %v", err)
		return []byte(`{}`)
	}
	return data
}
