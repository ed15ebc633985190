package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Mentat-Vision/moe/expert"
	"github.com/Mentat-Vision/moe/frame"
	"github.com/Mentat-Vision/moe/session"
	"github.com/Mentat-Vision/moe/util/logger"
	"github.com/Mentat-Vision/moe/util/metrics"
)

// DefaultAggregateTimeout bounds a fan-out aggregate when no expert
// declares its own timeout.
const DefaultAggregateTimeout = 5 * time.Second

var (
	// ErrUnknownExpert is returned when single-expert dispatch names an
	// expert that is not registered. Recoverable: the connection stays
	// open and the error goes back on the same channel.
	ErrUnknownExpert = errors.New("unknown expert")

	// ErrExpertDisabled is returned when single-expert dispatch names an
	// expert that is registered but toggled off.
	ErrExpertDisabled = errors.New("expert disabled")
)

// Router turns an incoming frame plus routing intent into worker jobs.
// Single-expert mode targets one named worker and echoes its raw result;
// fan-out mode submits to every active worker and hands completion to
// the aggregator. The router imposes no pacing: callers own their frame
// rate, the bounded worker queues own backpressure.
type Router struct {
	logger   *logger.Logger
	registry *expert.Registry
	agg      *Aggregator
	statsFn  StatsFunc

	timeouts       map[string]time.Duration
	defaultTimeout time.Duration
}

func NewRouter(registry *expert.Registry, agg *Aggregator, statsFn StatsFunc, timeouts map[string]time.Duration) *Router {
	return &Router{
		logger:         logger.NewLogger("Router"),
		registry:       registry,
		agg:            agg,
		statsFn:        statsFn,
		timeouts:       timeouts,
		defaultTimeout: DefaultAggregateTimeout,
	}
}

// DispatchSingle routes one frame to one named expert. The response is
// the expert's raw payload plus camera_id and the worker's fps. A full
// queue drops the frame silently; only addressing errors reach the
// caller.
func (r *Router) DispatchSingle(sess *session.Session, expertName string, f *frame.Frame) error {
	w, ok := r.registry.Get(expertName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExpert, expertName)
	}
	if !r.registry.Toggles().Enabled(expertName) {
		return fmt.Errorf("%w: %s", ErrExpertDisabled, expertName)
	}

	metrics.RecordFrameReceived(sess.CameraID, "single")
	job := &expert.Job{
		CameraID:    sess.CameraID,
		Frame:       f,
		EnqueueTime: time.Now(),
		Sink: func(res expert.Result) {
			sess.Send(r.buildSingle(w, res))
		},
	}
	w.Submit(job)
	return nil
}

func (r *Router) buildSingle(w *expert.Worker, res expert.Result) []byte {
	var body map[string]any
	if res.Failed() {
		body = map[string]any{"error": res.Err}
	} else {
		body = make(map[string]any, len(res.Payload)+2)
		for k, v := range res.Payload {
			body[k] = v
		}
	}
	body["camera_id"] = res.CameraID
	body["fps"] = w.Stats().FPS

	data, err := json.Marshal(body)
	if err != nil {
		r.logger.Errorf("failed to marshal single-expert result: %v", err)
		return []byte(`{}`)
	}
	return data
}

// DispatchFanOut routes one frame to every active expert and opens an
// aggregate for the results. No active experts means an immediate empty
// combined result with nothing left pending. Only accepted submissions
// count as outstanding: a worker that rejects the job is withdrawn from
// the aggregate on the spot.
func (r *Router) DispatchFanOut(sess *session.Session, f *frame.Frame) {
	metrics.RecordFrameReceived(sess.CameraID, "fanout")

	active := r.registry.Active()
	if len(active) == 0 {
		sess.Send(BuildCombined(sess.CameraID, nil, r.statsFn))
		return
	}

	names := make([]string, len(active))
	for i, w := range active {
		names[i] = w.Name()
	}
	r.agg.Open(sess, f.Sequence, names, r.aggregateTimeout(names))

	for _, w := range active {
		job := &expert.Job{
			CameraID:    sess.CameraID,
			Frame:       f,
			EnqueueTime: time.Now(),
			Sink:        r.agg.Collect,
		}
		if !w.Submit(job) {
			r.agg.Withdraw(sess.CameraID, f.Sequence, w.Name())
		}
	}
}

// aggregateTimeout is the max of the participating experts' timeouts, so
// a slow captioner keeps its full deadline even alongside fast detectors.
func (r *Router) aggregateTimeout(names []string) time.Duration {
	timeout := time.Duration(0)
	for _, name := range names {
		if t, ok := r.timeouts[name]; ok && t > timeout {
			timeout = t
		}
	}
	if timeout == 0 {
		timeout = r.defaultTimeout
	}
	return timeout
}
